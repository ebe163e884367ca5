// pcdconv converts point cloud files between PCD encodings. Raw
// KITTI-style .bin files (x, y, z, intensity float32 records) are
// accepted as input too.
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pcdio/pkg/pcd"
)

var cfg struct {
	in        string
	out       string
	encoding  string
	transform string
	flipY     bool
	strict    bool
}

var cmd = &cobra.Command{
	Use:           "pcdconv",
	Short:         "convert point cloud files between PCD encodings",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	cmd.PersistentFlags().StringVarP(&cfg.in, "in", "i", "", "input .pcd or .bin file")
	cmd.PersistentFlags().StringVarP(&cfg.out, "out", "o", "", "output .pcd file")
	cmd.PersistentFlags().StringVarP(&cfg.encoding, "encoding", "e", "binary", "output encoding (ascii|binary)")
	cmd.PersistentFlags().StringVar(&cfg.transform, "transform", "", "yaml file with coordinate transform options")
	cmd.PersistentFlags().BoolVar(&cfg.flipY, "flip-y", false, "flip the Y axis (left/right handed conversion)")
	cmd.PersistentFlags().BoolVar(&cfg.strict, "strict", false, "fail on malformed ascii records instead of skipping them")

	cmd.MarkPersistentFlagRequired("in")
	cmd.MarkPersistentFlagRequired("out")
}

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error("pcdconv failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var enc pcd.Encoding
	switch strings.ToLower(cfg.encoding) {
	case "ascii":
		enc = pcd.ASCII
	case "binary":
		enc = pcd.Binary
	default:
		return fmt.Errorf("cannot write encoding %q", cfg.encoding)
	}

	var opts []pcd.Option
	if cfg.transform != "" {
		t, err := loadTransformConfig(cfg.transform)
		if err != nil {
			return err
		}
		opts = append(opts, pcd.WithTransform(t))
	} else if cfg.flipY {
		opts = append(opts, pcd.WithTransform(pcd.FlipYTransform(pcd.RightHanded, pcd.LeftHanded)))
	}
	if cfg.strict {
		opts = append(opts, pcd.WithStrictASCII())
	}

	in, err := os.Open(cfg.in)
	if err != nil {
		return err
	}
	defer in.Close()

	var cloud *pcd.Cloud[pcd.PointXYZI]
	if strings.ToLower(filepath.Ext(cfg.in)) == ".bin" {
		cloud, err = decodeRawBin(in)
	} else {
		cloud, err = pcd.Decode[pcd.PointXYZI](in, opts...)
	}
	if err != nil {
		return err
	}

	out, err := os.Create(cfg.out)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := pcd.Encode(out, cloud, enc); err != nil {
		return err
	}

	slog.Info("converted", "in", cfg.in, "out", cfg.out, "points", cloud.Len(), "encoding", enc.String())
	return nil
}

const rawBinRecordLen = 4 * 4

// decodeRawBin reads the headerless x/y/z/intensity float32 format.
func decodeRawBin(r io.Reader) (*pcd.Cloud[pcd.PointXYZI], error) {
	cloud := &pcd.Cloud[pcd.PointXYZI]{}
	rec := make([]byte, rawBinRecordLen)
	for {
		if _, err := io.ReadFull(r, rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read raw bin record: %w", err)
		}
		cloud.Points = append(cloud.Points, pcd.PointXYZI{
			X:         math.Float32frombits(binary.LittleEndian.Uint32(rec[0:])),
			Y:         math.Float32frombits(binary.LittleEndian.Uint32(rec[4:])),
			Z:         math.Float32frombits(binary.LittleEndian.Uint32(rec[8:])),
			Intensity: math.Float32frombits(binary.LittleEndian.Uint32(rec[12:])),
		})
	}
	cloud.Header.Width = cloud.Len()
	cloud.Header.Height = 1
	cloud.Header.Points = int64(cloud.Len())
	return cloud, nil
}

type transformConfig struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	ScaleX float64 `yaml:"scale_x"`
	ScaleY float64 `yaml:"scale_y"`
	ScaleZ float64 `yaml:"scale_z"`
}

func loadTransformConfig(path string) (pcd.TransformOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pcd.TransformOptions{}, fmt.Errorf("read transform config: %w", err)
	}
	var tc transformConfig
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return pcd.TransformOptions{}, fmt.Errorf("parse transform config: %w", err)
	}

	t := pcd.NewTransformOptions()
	if t.Source, err = parseSystem(tc.Source); err != nil {
		return pcd.TransformOptions{}, err
	}
	if t.Target, err = parseSystem(tc.Target); err != nil {
		return pcd.TransformOptions{}, err
	}
	if tc.ScaleX != 0 {
		t.ScaleX = tc.ScaleX
	}
	if tc.ScaleY != 0 {
		t.ScaleY = tc.ScaleY
	}
	if tc.ScaleZ != 0 {
		t.ScaleZ = tc.ScaleZ
	}
	return t, nil
}

func parseSystem(s string) (pcd.CoordinateSystem, error) {
	switch strings.ToLower(s) {
	case "", "right":
		return pcd.RightHanded, nil
	case "left":
		return pcd.LeftHanded, nil
	}
	return 0, fmt.Errorf("unknown coordinate system %q", s)
}
