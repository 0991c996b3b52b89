package pictureBed

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"equipment-lending-system/config"

	"github.com/google/uuid"
)

// ErrPresignUnsupported 本地存储不支持预签名直传
var ErrPresignUnsupported = errors.New("当前存储不支持预签名上传")

// Storage 文件存储，Save 返回可直接访问的 URL
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	PresignUpload(ctx context.Context, req PresignedUploadRequest) (*PresignedUploadResponse, error)
}

var Default Storage

// Init 配置了 S3 bucket 时使用对象存储，否则写本地目录
func Init(ctx context.Context) error {
	cfg := config.Get()
	if cfg.S3.Bucket == "" {
		Default = NewLocal(cfg.Storage.Home, cfg.Storage.URLPrefix)
		return nil
	}
	s, err := NewS3(ctx, cfg.S3)
	if err != nil {
		return err
	}
	Default = s
	return nil
}

// objectName 生成 <prefix>/<uuid><ext>，扩展名统一小写
func objectName(prefix, filename string) string {
	key := path.Join(strings.Trim(prefix, "/"), uuid.NewString()+strings.ToLower(path.Ext(filename)))
	return strings.TrimLeft(key, "/")
}
