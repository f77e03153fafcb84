package utils

import (
	"strconv"
	"time"
)

// TimestampLayout は記録に保存する ISO-8601 (UTC・ミリ秒) のレイアウトです。
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MillisID は、時刻を Unix ミリ秒の10進文字列に変換します。
// レコードIDとエクスポート時のファイル名の両方で使うのだ。
func MillisID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// FormatTimestamp は、時刻を UTC の ISO-8601 文字列にします。
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp は、保存済みのタイムスタンプを解析します。
// 他のツールが書いた秒精度の値も受け付けるため RFC3339Nano で読むのだ。
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
