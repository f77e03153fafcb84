package generator

import "errors"

// 生成失敗の分類です。どれも「結果なし」として扱われます。
var (
	// ErrRequestFailed は通信エラー、または生成エンドポイントがエラーを返したことを示します。
	ErrRequestFailed = errors.New("image generation request failed")
	// ErrMalformedResponse はレスポンスが期待する JSON 形式ではないことを示します。
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrNoImage はレスポンスに使える画像が含まれていないことを示します。
	ErrNoImage = errors.New("no image in generation response")
	// ErrBlocked はモデルが安全上の理由で生成を拒否したことを示します。
	ErrBlocked = errors.New("image generation blocked")
	// ErrAssetStoreFailed は生成できた画像の保存に失敗したことを示します。
	ErrAssetStoreFailed = errors.New("generated image could not be stored")
)

// IsNoResult は err が生成クライアント由来の「結果なし」かどうかを返します。
func IsNoResult(err error) bool {
	return errors.Is(err, ErrRequestFailed) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrNoImage) ||
		errors.Is(err, ErrBlocked) ||
		errors.Is(err, ErrAssetStoreFailed)
}
