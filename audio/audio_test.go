package audio

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"

	"hacksstv/sstv"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"wav", WAV, false},
		{"AIFF", AIFF, false},
		{"ogg", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error %v is not ErrUnknownFormat", tt.in, err)
		}
	}
	if WAV.Ext() != ".wav" || AIFF.Ext() != ".aiff" {
		t.Errorf("Ext() = %q, %q", WAV.Ext(), AIFF.Ext())
	}
}

// testSamples spans the full biased range, and more than one chunk.
func testSamples() ([]uint16, []int) {
	samples := []uint16{sstv.Center, 0, 65535, sstv.Center + 1, sstv.Center - 1}
	for i := 0; i < chunkSize+100; i++ {
		samples = append(samples, uint16(sstv.Center+(i%2001)-1000))
	}
	want := make([]int, len(samples))
	for i, s := range samples {
		want[i] = int(s) - sstv.Center
	}
	return samples, want
}

func TestWriteWAV(t *testing.T) {
	samples, want := testSamples()
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := Write(path, WAV, samples, 11025); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 11025 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("header = %d Hz, %d channels, %d bits", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	checkData(t, buf, want)
}

func TestWriteAIFF(t *testing.T) {
	samples, want := testSamples()
	path := filepath.Join(t.TempDir(), "out.aiff")
	if err := Write(path, AIFF, samples, 8000); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid aiff file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("header = %d Hz, %d channels, %d bits", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	checkData(t, buf, want)
}

func checkData(t *testing.T, buf *goaudio.IntBuffer, want []int) {
	t.Helper()
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	if !reflect.DeepEqual(buf.Data[:5], want[:5]) {
		t.Errorf("first samples = %v, want %v", buf.Data[:5], want[:5])
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWriteRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	err := Write(path, Format(7), []uint16{sstv.Center}, 8000)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestWriteBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if err := Write(path, WAV, []uint16{sstv.Center}, 8000); err == nil {
		t.Error("Write to a missing directory succeeded")
	}
}
