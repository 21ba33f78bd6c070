package utils

import (
	"strings"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := strings.Repeat("The principle of moments states that the sum of clockwise moments equals the sum of anticlockwise moments. ", 40)

	for _, alg := range []CompressionAlgorithm{CompressionNone, CompressionGzip, CompressionBrotli} {
		compressed, err := CompressData([]byte(original), alg)
		if err != nil {
			t.Fatalf("%s compress: %v", alg, err)
		}
		restored, err := DecompressData(compressed, alg)
		if err != nil {
			t.Fatalf("%s decompress: %v", alg, err)
		}
		if string(restored) != original {
			t.Errorf("%s round trip mismatch", alg)
		}
		if alg != CompressionNone && len(compressed) >= len(original) {
			t.Errorf("%s did not shrink repetitive text: %d >= %d", alg, len(compressed), len(original))
		}
	}
}

func TestGetBestCompression(t *testing.T) {
	if got := GetBestCompression(make([]byte, 100)); got != CompressionNone {
		t.Errorf("small payload = %s, want none", got)
	}
	if got := GetBestCompression(make([]byte, 5000)); got != CompressionBrotli {
		t.Errorf("large payload = %s, want brotli", got)
	}
}

func TestCompressTextChoosesAlgorithm(t *testing.T) {
	compressed, alg, err := CompressText("short note")
	if err != nil {
		t.Fatalf("CompressText: %v", err)
	}
	if alg != CompressionNone {
		t.Errorf("short text algorithm = %s", alg)
	}
	restored, err := DecompressText(compressed, alg)
	if err != nil || restored != "short note" {
		t.Errorf("restored = %q, err = %v", restored, err)
	}

	long := strings.Repeat("chapter source text ", 100)
	compressed, alg, err = CompressText(long)
	if err != nil {
		t.Fatalf("CompressText: %v", err)
	}
	if alg != CompressionBrotli {
		t.Errorf("long text algorithm = %s", alg)
	}
	restored, err = DecompressText(compressed, alg)
	if err != nil || restored != long {
		t.Errorf("long text round trip failed: %v", err)
	}
}

func TestDecompressUnknownAlgorithm(t *testing.T) {
	if _, err := DecompressData([]byte("x"), CompressionAlgorithm("zstd")); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}
