package downloaders

import (
	"math"
	"testing"
)

const testURI = "https://example.com/watch?v=1"

func TestAria2OutputParserBatchCount(t *testing.T) {
	t.Parallel()

	parsed, total, done, pct := Aria2OutputParser("Downloading 3 item(s)", testURI, 0, 0, 0)
	if !parsed {
		t.Fatal("expected batch line to parse")
	}
	if total != 3 || done != 0 || pct != 0.0 {
		t.Errorf("got total=%d done=%d pct=%f, want 3/0/0", total, done, pct)
	}
}

func TestAria2OutputParserSingleItemPercent(t *testing.T) {
	t.Parallel()

	parsed, total, _, pct := Aria2OutputParser("[#1 SIZE:10MiB/24MiB(42%) CN:8 SPD:2.1MiB]", testURI, 1, 0, 0)
	if !parsed {
		t.Fatal("expected progress line to parse")
	}
	if total != 1 {
		t.Errorf("total: got %d, want 1", total)
	}
	if math.Abs(pct-42.0) > 1e-9 {
		t.Errorf("pct: got %f, want 42.0", pct)
	}
}

func TestAria2OutputParserMultiItemCompletion(t *testing.T) {
	t.Parallel()

	parsed, total, done, pct := Aria2OutputParser("Download complete: /tmp/frag2.bin", testURI, 4, 1, 25.0)
	if !parsed {
		t.Fatal("expected completion line to parse")
	}
	if total != 4 || done != 2 {
		t.Errorf("got total=%d done=%d, want 4/2", total, done)
	}
	if math.Abs(pct-50.0) > 1e-9 {
		t.Errorf("pct: got %f, want 50.0", pct)
	}
}

func TestAria2OutputParserIgnoresNoise(t *testing.T) {
	t.Parallel()

	parsed, total, done, pct := Aria2OutputParser("some unrelated line", testURI, 1, 0, 33.0)
	if parsed {
		t.Fatal("noise line must not parse")
	}
	if total != 1 || done != 0 {
		t.Errorf("counts must carry through, got total=%d done=%d", total, done)
	}
	if math.Abs(pct-33.0) > 1e-9 {
		t.Errorf("pct must carry through, got %f", pct)
	}
}
