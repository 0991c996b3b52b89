package pictureBed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local 把文件保存到本地目录，由 gin 以静态文件方式提供访问
type Local struct {
	SaveDir string
	BaseURL string
}

func NewLocal(saveDir, baseURL string) *Local {
	return &Local{SaveDir: saveDir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Save(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	key := objectName("", name)
	if err := os.MkdirAll(l.SaveDir, os.ModePerm); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(l.SaveDir, key))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + key, nil
}

func (l *Local) PresignUpload(context.Context, PresignedUploadRequest) (*PresignedUploadResponse, error) {
	return nil, ErrPresignUnsupported
}
