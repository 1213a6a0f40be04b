package espeak

import (
	"errors"
	"slices"
	"testing"

	"github.com/dgnsrekt/docreader/tts"
)

const voicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
garbage line
`

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(voicesOutput))
	want := []tts.SystemVoice{
		{Name: "Afrikaans", Lang: "af", URI: "af"},
		{Name: "English (Great Britain)", Lang: "en-gb", URI: "en-gb"},
		{Name: "English (America)", Lang: "en-us", URI: "en-us"},
	}
	if !slices.Equal(voices, want) {
		t.Errorf("parseVoices() = %+v, want %+v", voices, want)
	}
}

func TestParseVoicesEmpty(t *testing.T) {
	if voices := parseVoices(nil); len(voices) != 0 {
		t.Errorf("expected no voices, got %d", len(voices))
	}
}

func TestSpeakArgs(t *testing.T) {
	tests := []struct {
		name string
		u    tts.SystemUtterance
		want []string
	}{
		{
			name: "default voice",
			u:    tts.SystemUtterance{Rate: 1},
			want: []string{"-s", "175", "--stdin"},
		},
		{
			name: "voice and rate",
			u:    tts.SystemUtterance{Rate: 2, Voice: &tts.SystemVoice{URI: "en-gb"}},
			want: []string{"-s", "350", "-v", "en-gb", "--stdin"},
		},
		{
			name: "rate clamps low",
			u:    tts.SystemUtterance{Rate: 0.25},
			want: []string{"-s", "80", "--stdin"},
		},
		{
			name: "zero rate uses default",
			u:    tts.SystemUtterance{},
			want: []string{"-s", "175", "--stdin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := speakArgs(&tt.u, 175); !slices.Equal(got, tt.want) {
				t.Errorf("speakArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookPathMissing(t *testing.T) {
	_, err := LookPath("docreader-no-such-espeak-binary")
	if !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("LookPath() error = %v, want ErrEngineNotAvailable", err)
	}
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New(tts.EspeakConfig{Binary: "docreader-no-such-espeak-binary", WordsPerMinute: 175}, nil)
	if !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("New() error = %v, want ErrEngineNotAvailable", err)
	}
}

func TestBindingWithoutProcess(t *testing.T) {
	b := &Binding{binary: "espeak", wpm: 175}
	// Nothing is running, so these must be no-ops.
	b.Pause()
	b.Resume()
	b.Cancel()
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Speak(&tts.SystemUtterance{Text: "Hi."}); !errors.Is(err, tts.ErrEngineClosed) {
		t.Errorf("Speak after close error = %v, want ErrEngineClosed", err)
	}
}
