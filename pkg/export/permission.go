package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/wallpaper-kit/pkg/kvstore"
)

// Status はメディアライブラリへの書き込み権限の状態です。
type Status int

const (
	Undetermined Status = iota
	Granted
	Denied
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "undetermined"
	}
}

// ParseStatus は設定値や保存値を Status に変換します。
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "granted":
		return Granted, nil
	case "denied":
		return Denied, nil
	case "", "undetermined":
		return Undetermined, nil
	}
	return Undetermined, fmt.Errorf("unknown permission status: %q", s)
}

// StaticPermission は固定の状態を返す Permission です。
type StaticPermission Status

func (p StaticPermission) Status(context.Context) (Status, error)  { return Status(p), nil }
func (p StaticPermission) Request(context.Context) (Status, error) { return Status(p), nil }

// Asker はユーザーに許可を尋ねます。
type Asker interface {
	Ask(ctx context.Context, question string) (bool, error)
}

// TerminalAsker は端末で y/N を尋ねる Asker です。
type TerminalAsker struct {
	In  io.Reader
	Out io.Writer
}

func (a TerminalAsker) Ask(_ context.Context, question string) (bool, error) {
	fmt.Fprintf(a.Out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// DefaultPermissionKey は権限の決定を保存するキーです。
const DefaultPermissionKey = "@media_permission"

// StoredPermission は一度下した決定をキーバリューストアに保存する Permission です。
// asker が nil の場合、未決定の状態は保存せずに Denied として扱います。
type StoredPermission struct {
	store kvstore.Store
	key   string
	asker Asker
}

// NewStoredPermission は保存先と問い合わせ方法を指定して初期化します。
func NewStoredPermission(store kvstore.Store, key string, asker Asker) (*StoredPermission, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if key == "" {
		key = DefaultPermissionKey
	}
	return &StoredPermission{store: store, key: key, asker: asker}, nil
}

func (p *StoredPermission) Status(ctx context.Context) (Status, error) {
	data, err := p.store.Get(ctx, p.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Undetermined, nil
	}
	if err != nil {
		return Undetermined, err
	}
	return ParseStatus(string(data))
}

func (p *StoredPermission) Request(ctx context.Context) (Status, error) {
	current, err := p.Status(ctx)
	if err != nil {
		return Undetermined, err
	}
	if current != Undetermined {
		return current, nil
	}
	if p.asker == nil {
		return Denied, nil
	}

	ok, err := p.asker.Ask(ctx, "壁紙をメディアライブラリに保存することを許可しますか？")
	if err != nil {
		return Undetermined, err
	}
	decision := Denied
	if ok {
		decision = Granted
	}
	if err := p.set(ctx, decision); err != nil {
		return Undetermined, err
	}
	return decision, nil
}

// Grant は権限を許可済みとして保存します。
func (p *StoredPermission) Grant(ctx context.Context) error { return p.set(ctx, Granted) }

// Revoke は権限を拒否として保存します。
func (p *StoredPermission) Revoke(ctx context.Context) error { return p.set(ctx, Denied) }

func (p *StoredPermission) set(ctx context.Context, s Status) error {
	return p.store.Set(ctx, p.key, []byte(s.String()))
}
