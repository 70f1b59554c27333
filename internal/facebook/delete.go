package facebook

import (
	"context"
	"errors"
	"strings"
)

// DeleteAction removes a previously published remote post. When the primary
// path fails at the transport level it replays the delete through the raw
// fallback path before giving up.
type DeleteAction struct {
	client      GraphAPI
	accessToken string
}

// NewDeleteAction creates a DeleteAction.
func NewDeleteAction(client GraphAPI, accessToken string) *DeleteAction {
	return &DeleteAction{
		client:      client,
		accessToken: strings.TrimSpace(accessToken),
	}
}

// Execute deletes the remote post by id. The fallback is reserved for the
// transport error class; when the fallback fails without a more specific
// message, the original transport error is surfaced instead.
func (a *DeleteAction) Execute(ctx context.Context, remotePostID string) Result {
	if a.accessToken == "" {
		return failure("access token not configured")
	}

	result, err := a.client.DeletePost(ctx, remotePostID)
	if err == nil {
		return result
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return failure("unexpected error: " + err.Error())
	}

	fallback := a.client.DeletePostFallback(ctx, remotePostID)
	if fallback.Success {
		return fallback
	}

	if fallback.Error == "" {
		fallback.Error = transportErr.Error()
	}
	return fallback
}
