package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// overlayFont is the font ffmpeg's drawtext filter uses for the callsign.
const overlayFont = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// CaptureConfig selects the webcam and the optional callsign banner.
type CaptureConfig struct {
	// Device is the OS-specific device name or index. Empty selects the
	// platform default.
	Device string

	// Callsign, when set, is drawn along the bottom edge of the frame.
	Callsign string
}

// Capture grabs a single frame from a webcam through ffmpeg, scaled to
// width x height.
func Capture(ctx context.Context, cfg CaptureConfig, width, height int) (*image.RGBA, error) {
	input, err := inputArgs(runtime.GOOS, cfg.Device)
	if err != nil {
		return nil, err
	}
	args := append(input,
		"-hide_banner", "-loglevel", "error",
		"-frames:v", "1",
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"-vf", filterArg(cfg.Callsign, width, height), "-")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get FFmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start FFmpeg: %w", err)
	}
	log.Printf("[INFO] source: capturing from webcam %q", cfg.Device)

	raw := make([]byte, width*height*3)
	_, readErr := io.ReadFull(stdout, raw)
	waitErr := cmd.Wait()
	if readErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("reading frame from FFmpeg: %w: %s", readErr, msg)
		}
		return nil, fmt.Errorf("reading frame from FFmpeg: %w", readErr)
	}
	if waitErr != nil {
		log.Printf("[WARN] source: FFmpeg exited with %v after delivering a frame", waitErr)
	}

	return rgb24ToRGBA(raw, width, height), nil
}

// inputArgs returns the ffmpeg input options for the platform's capture
// API.
func inputArgs(goos, dev string) ([]string, error) {
	switch goos {
	case "linux":
		if dev == "" {
			dev = "/dev/video0"
		}
		return []string{"-f", "v4l2", "-i", dev}, nil
	case "darwin":
		if dev == "" {
			dev = "0"
		}
		return []string{"-f", "avfoundation", "-i", dev}, nil
	case "windows":
		if dev == "" {
			dev = "Integrated Webcam"
		}
		return []string{"-f", "dshow", "-i", "video=" + dev}, nil
	}
	return nil, fmt.Errorf("unsupported OS: %s", goos)
}

func filterArg(callsign string, width, height int) string {
	vf := fmt.Sprintf("scale=%d:%d", width, height)
	if callsign == "" {
		return vf
	}
	return vf + ",drawbox=x=0:y=ih-32:w=iw:h=32:color=black@0.6:t=fill" +
		fmt.Sprintf(",drawtext=fontfile=%s:text='%s':x=8:y=h-28:fontcolor=white:fontsize=24:borderw=2:bordercolor=black",
			overlayFont, callsign)
}

func rgb24ToRGBA(raw []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(raw); i, j = i+3, j+4 {
		img.Pix[j] = raw[i]
		img.Pix[j+1] = raw[i+1]
		img.Pix[j+2] = raw[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
