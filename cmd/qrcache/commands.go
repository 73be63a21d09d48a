package main

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/EgorLis/my-qrcodes/internal/app"
	"github.com/EgorLis/my-qrcodes/internal/config"
	"github.com/EgorLis/my-qrcodes/internal/domain"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "qrcache",
		Short:         "QR code images: render once, cache, publish",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newRenderCommand(os.Stdout))
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(cmd.Context())
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

type renderFlags struct {
	value     string
	ecc       string
	size      int
	width     int
	height    int
	dir       string
	baseDir   string
	urlPrefix string
	verbose   bool
}

type renderOutput struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func newRenderCommand(out io.Writer) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Get or create one QR image and print its record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ecc, err := domain.ParseECLevel(f.ecc)
			if err != nil {
				return err
			}
			req, err := domain.NewRequest(f.value, ecc, f.size)
			if err != nil {
				return err
			}

			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			// флаги важнее окружения, только если заданы явно.
			// Префикс влияет только на новые картинки: закешированная ссылка отдаётся как есть.
			var o config.Overrides
			if cmd.Flags().Changed("dir") {
				o.ArtifactDir = &f.dir
			}
			if cmd.Flags().Changed("base-dir") {
				o.BaseDir = &f.baseDir
			}
			if cmd.Flags().Changed("url-prefix") {
				o.URLPrefix = &f.urlPrefix
			}

			logOut := io.Discard
			if f.verbose {
				logOut = os.Stderr
			}
			core, err := app.NewCore(cmd.Context(), cfg, o, log.New(logOut, "[render] ", log.LstdFlags))
			if err != nil {
				return err
			}
			defer core.Close()

			rec, err := core.Service.GetOrCreate(cmd.Context(), req)
			if err != nil {
				return err
			}

			res := renderOutput{URL: rec.URL, Width: rec.Width, Height: rec.Height}
			if f.width > 0 {
				res.Width = f.width
			}
			if f.height > 0 {
				res.Height = f.height
			}
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&f.value, "value", "", "Text to encode (required)")
	cmd.Flags().StringVar(&f.ecc, "ecc", string(domain.DefaultECLevel), "Error correction level: L, M, Q, H")
	cmd.Flags().IntVar(&f.size, "size", domain.DefaultModuleSize, "Module size in pixels, 1..10")
	cmd.Flags().IntVar(&f.width, "width", 0, "Width to report instead of the natural one")
	cmd.Flags().IntVar(&f.height, "height", 0, "Height to report instead of the natural one")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Artifact directory (overrides QR_TMP_DIR)")
	cmd.Flags().StringVar(&f.baseDir, "base-dir", "", "Base directory, artifacts go to <base>/temp unless --dir is set (overrides QR_BASE_DIR)")
	cmd.Flags().StringVar(&f.urlPrefix, "url-prefix", "", "Public URL prefix (overrides QR_TMP_URL)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log to stderr")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
