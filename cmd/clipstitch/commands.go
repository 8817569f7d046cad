package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/clipstitch/internal/config"
	"github.com/kikiluvv/clipstitch/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	thumbOutput string
	thumbAt     string
	initForce   bool
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail [clip]",
	Short: "Write the first frame of a clip as an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		var img image.Image
		if thumbAt == "" {
			img = exec.FirstFrame(cmd.Context(), args[0])
			if img == nil {
				return fmt.Errorf("no decodable frame in %s", args[0])
			}
		} else {
			at, err := util.ParseTimestamp(thumbAt)
			if err != nil {
				return err
			}
			if img, err = exec.ExtractFrame(cmd.Context(), args[0], at); err != nil {
				return err
			}
		}

		if err := writeImage(thumbOutput, img); err != nil {
			return err
		}
		log.Info().Str("output", thumbOutput).Msg("thumbnail written")
		return nil
	},
}

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		util.CleanupFiles(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// probeReport is what the probe command prints.
type probeReport struct {
	Path     string  `yaml:"path"`
	Duration string  `yaml:"duration"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      float64 `yaml:"fps"`
	Video    string  `yaml:"video_codec"`
	Audio    string  `yaml:"audio_codec,omitempty"`
	Bitrate  int64   `yaml:"bitrate"`
}

var probeCmd = &cobra.Command{
	Use:   "probe [clips...]",
	Short: "Print stream information for clips",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		reports := make([]probeReport, 0, len(args))
		for _, path := range args {
			info, err := exec.ProbeVideo(cmd.Context(), path)
			if err != nil {
				return err
			}
			reports = append(reports, probeReport{
				Path:     path,
				Duration: util.FormatDuration(info.Duration),
				Width:    info.Width,
				Height:   info.Height,
				FPS:      info.FPS,
				Video:    info.VideoCodec,
				Audio:    info.AudioCodec,
				Bitrate:  info.Bitrate,
			})
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(reports)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "clipstitch.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	thumbnailCmd.Flags().StringVarP(&thumbOutput, "output", "o", "thumbnail.png", "image path (.png or .jpg)")
	thumbnailCmd.Flags().StringVar(&thumbAt, "at", "", "timestamp to grab instead of the first frame (e.g. 00:00:01.5)")

	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
