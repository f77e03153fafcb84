package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shouni/wallpaper-kit/internal/config"
	"github.com/shouni/wallpaper-kit/internal/server"
	"github.com/shouni/wallpaper-kit/pkg/domain"
	"github.com/shouni/wallpaper-kit/pkg/export"
	"github.com/shouni/wallpaper-kit/pkg/gallery"
)

// openApp は CLI 用に app を組み立てるのだ。権限の問い合わせは端末で行います。
func openApp(cmd *cobra.Command) (*app, error) {
	asker := export.TerminalAsker{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	return newApp(cmd.Context(), configFrom(cmd), asker)
}

// openKeyStore はキーリングを開きます。開けない環境では環境変数だけで動くよう nil を返すのだ。
func openKeyStore(cmd *cobra.Command) *config.KeyStore {
	keys, err := config.OpenKeyStore()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "キーリングを利用できません: %v\n", err)
		return nil
	}
	return keys
}

func newGenerateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "プロンプトから壁紙を生成してギャラリーに追加します",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.controller(cmd.Context(), openKeyStore(cmd), true)
			if err != nil {
				return err
			}
			img, err := c.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), img)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "生成しました: %s\n%s\n", img.ID, img.URL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON で出力する")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "ギャラリーの壁紙を新しい順に表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			images := a.store.Load(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), images)
			}
			printGallery(cmd.OutOrStdout(), images)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON で出力する")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "ギャラリーから壁紙を削除します",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.controller(cmd.Context(), nil, false)
			if err != nil {
				return err
			}
			img, err := c.Get(args[0])
			if err != nil {
				return err
			}
			if !yes {
				asker := export.TerminalAsker{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
				ok, err := asker.Ask(cmd.Context(), fmt.Sprintf("「%s」を削除しますか？", img.Prompt))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "キャンセルしました")
					return nil
				}
			}
			if err := c.Delete(cmd.Context(), img.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "削除しました: %s\n", img.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "確認せずに削除する")
	return cmd
}

var errExportFailed = errors.New("could not save to the media library")

func newExportCmd() *cobra.Command {
	var (
		imageURL string
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "壁紙をメディアライブラリに保存します",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (imageURL == "") {
				return errors.New("ID か --url のどちらか一方を指定してください")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.controller(cmd.Context(), nil, false)
			if err != nil {
				return err
			}

			if quiet {
				return saveQuietly(cmd, a, c, args, imageURL)
			}

			var asset *export.Asset
			if imageURL != "" {
				asset, err = c.ExportURL(cmd.Context(), imageURL)
			} else {
				asset, err = c.Export(cmd.Context(), args[0])
			}
			if errors.Is(err, export.ErrPermissionDenied) {
				return fmt.Errorf("保存できませんでした。`wallgen permission grant` で許可してください: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "保存しました: %s\n", asset.URI)
			return nil
		},
	}
	cmd.Flags().StringVar(&imageURL, "url", "", "ギャラリーに無い画像URLを直接保存する")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "何も出力せず、成否は終了コードだけで返す")
	return cmd
}

// saveQuietly はスクリプト向けの export です。失敗理由はログに出るだけなのだ。
func saveQuietly(cmd *cobra.Command, a *app, c *gallery.Controller, args []string, imageURL string) error {
	if imageURL == "" {
		img, err := c.Get(args[0])
		if err != nil {
			return err
		}
		imageURL = img.URL
	}
	exp, err := a.exporter(cmd.Context())
	if err != nil {
		return err
	}
	if !exp.SaveToLibrary(cmd.Context(), imageURL) {
		return errExportFailed
	}
	return nil
}

func newPermissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "メディアライブラリへの保存許可を管理します",
	}

	stored := func(cmd *cobra.Command) (*app, *export.StoredPermission, error) {
		a, err := openApp(cmd)
		if err != nil {
			return nil, nil, err
		}
		if a.stored == nil {
			a.Close()
			return nil, nil, fmt.Errorf("MEDIA_PERMISSION=%s で固定されているため変更できません", a.cfg.MediaPermission)
		}
		return a, a.stored, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "現在の状態を表示します",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				s, err := a.permission.Status(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "grant",
			Short: "保存を許可します",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, p, err := stored(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				return p.Grant(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "revoke",
			Short: "保存の許可を取り消します",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, p, err := stored(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				return p.Revoke(cmd.Context())
			},
		},
	)
	return cmd
}

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "生成プロバイダの API キーを OS のキーリングで管理します",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:       "set <provider>",
			Short:     "API キーを保存します（標準入力から1行読み込みます）",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"a4f", "gemini"},
			RunE: func(cmd *cobra.Command, args []string) error {
				keys, err := config.OpenKeyStore()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s の API キーを入力してください: ", args[0])
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				if err := keys.Set(args[0], strings.TrimSpace(line)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "保存しました")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <provider>",
			Short: "API キーを削除します",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				keys, err := config.OpenKeyStore()
				if err != nil {
					return err
				}
				return keys.Delete(args[0])
			},
		},
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "ギャラリーの HTTP API を起動します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			// サーバーでは端末に問い合わせできないので、未決定の権限は拒否扱いになるのだ。
			a, err := newApp(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.controller(cmd.Context(), openKeyStore(cmd), true)
			if err != nil {
				return err
			}

			gin.SetMode(cfg.GinMode)
			return server.Run(cmd.Context(), cfg.ServerAddr, server.NewRouter(c))
		},
	}
}

func printGallery(w io.Writer, images domain.Gallery) {
	fmt.Fprintf(w, "%d / %d\n", len(images), domain.MaxGallerySize)
	if len(images) == 0 {
		fmt.Fprintln(w, "まだ壁紙がありません。`wallgen generate <prompt>` で作成できます")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tPROMPT\tURL")
	for _, img := range images {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", img.ID, createdLabel(img), truncate(img.Prompt, 40), img.URL)
	}
	tw.Flush()
}

// createdLabel は作成日時をローカル時刻で表示します。読めない値はそのまま出すのだ。
func createdLabel(img domain.WallpaperImage) string {
	t, err := img.CreatedAt()
	if err != nil {
		return img.Timestamp
	}
	return t.Local().Format(createdLayout)
}

const createdLayout = "2006-01-02 15:04:05"

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var _ server.Gallery = (*gallery.Controller)(nil)
