package handler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 5 << 20 // 5MB

// saveUpload 校验并保存上传的图片，返回相对于上传目录的文件名。
// 通过解码图片头校验内容，仅接受 jpeg/png/gif/webp。
func (a *API) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxUploadBytes {
		return "", errors.New("图片大小不能超过5MB")
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.New("读取上传文件失败")
	}
	defer src.Close()

	if _, _, err := image.DecodeConfig(src); err != nil {
		return "", errors.New("只允许上传 jpeg/png/gif/webp 图片")
	}

	// 创建上传目录
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", errors.New("创建上传目录失败")
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)

	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, newFilename)); err != nil {
		return "", errors.New("保存文件失败")
	}

	return newFilename, nil
}
