package domain

// MaxGallerySize はギャラリーが保持できるレコード数の上限です。
const MaxGallerySize = 20

// Gallery は新しい順に並んだ WallpaperImage の列です。
type Gallery []WallpaperImage

// Insert は、img を先頭に追加して上限で切り詰めた新しい Gallery を返します。
// 入力 g は変更しません。溢れるのは常に最も古いレコードなのだ。
func Insert(g Gallery, img WallpaperImage) Gallery {
	n := len(g) + 1
	if n > MaxGallerySize {
		n = MaxGallerySize
	}
	out := make(Gallery, 0, n)
	out = append(out, img)
	for _, existing := range g {
		if len(out) == n {
			break
		}
		out = append(out, existing)
	}
	return out
}

// Remove は、id に一致するレコードを除いた新しい Gallery を返します。
// 残ったレコードの相対順序は保たれます。
func Remove(g Gallery, id string) (Gallery, bool) {
	out := make(Gallery, 0, len(g))
	removed := false
	for _, img := range g {
		if img.ID == id {
			removed = true
			continue
		}
		out = append(out, img)
	}
	return out, removed
}

// Find は id に一致する最初のレコードを返します。
func Find(g Gallery, id string) (WallpaperImage, bool) {
	for _, img := range g {
		if img.ID == id {
			return img, true
		}
	}
	return WallpaperImage{}, false
}

// Clone は独立したコピーを返すのだ。nil は空の Gallery になります。
func (g Gallery) Clone() Gallery {
	out := make(Gallery, len(g))
	copy(out, g)
	return out
}
