package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// DefaultJPEGQuality はエクスポート時の再エンコード品質です。
const DefaultJPEGQuality = 90

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DetectImageType はバイト列の MIME タイプを判定し、画像でなければエラーを返します。
func DetectImageType(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("画像データではありません (detected: %s)", mimeType)
	}
	return mimeType, nil
}

// EnsureJPEG は JPEG ならそのまま、それ以外の画像は JPEG に変換して返すのだ。
// 画像でないデータはエラーになります。デコードできない画像形式（WebP 等）は
// 元のバイト列と converted=false を返します。
func EnsureJPEG(data []byte, quality int) (out []byte, converted bool, err error) {
	mimeType, err := DetectImageType(data)
	if err != nil {
		return nil, false, err
	}
	if mimeType == "image/jpeg" {
		return data, false, nil
	}
	compressed, err := CompressToJPEG(data, quality)
	if err != nil {
		return data, false, nil
	}
	return compressed, true, nil
}
