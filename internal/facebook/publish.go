package facebook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// PublishAction turns a (title, content, optional image) tuple into a
// published or failed-to-publish remote post. It never returns a Go error:
// every fault is classified into the Result shape.
type PublishAction struct {
	client      GraphAPI
	accessToken string
	uploadDir   string
}

// NewPublishAction creates a PublishAction. uploadDir is the local directory
// stored image references resolve against.
func NewPublishAction(client GraphAPI, accessToken, uploadDir string) *PublishAction {
	return &PublishAction{
		client:      client,
		accessToken: strings.TrimSpace(accessToken),
		uploadDir:   uploadDir,
	}
}

// Execute formats the message and submits it through the text or photo path.
// A missing access token or a missing local image file is a precondition
// failure reported before any network call.
func (a *PublishAction) Execute(ctx context.Context, title, content, imagePath string) Result {
	if a.accessToken == "" {
		return failure("access token not configured")
	}

	message := FormatMessage(title, content)

	if strings.TrimSpace(imagePath) == "" {
		result, err := a.client.PublishText(ctx, message)
		if err != nil {
			return failure("SDK exception: " + err.Error())
		}
		return result
	}

	resolved := a.resolveImagePath(imagePath)
	if _, err := os.Stat(resolved); err != nil {
		return failure("image file not found: " + resolved)
	}

	return a.client.PublishPhoto(ctx, message, resolved)
}

// resolveImagePath 将存储的相对图片引用解析为本地文件路径。
func (a *PublishAction) resolveImagePath(imagePath string) string {
	if filepath.IsAbs(imagePath) {
		return imagePath
	}
	return filepath.Join(a.uploadDir, imagePath)
}

// FormatMessage joins the trimmed title and content with a single blank line.
// An empty content yields the trimmed title alone.
func FormatMessage(title, content string) string {
	message := strings.TrimSpace(title)
	if trimmed := strings.TrimSpace(content); trimmed != "" {
		message += "\n\n" + trimmed
	}
	return message
}
