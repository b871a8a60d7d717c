package langdetect_test

import (
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/langdetect"
)

// TestLooksEnglish_Positive covers clearly English utterances.
func TestLooksEnglish_Positive(t *testing.T) {
	t.Parallel()

	positives := []string{
		"I don't know what you said",
		"can you please say that again",
		"the weather was really good today",
		"what do you think about that",
	}
	for _, text := range positives {
		if !langdetect.LooksEnglish(text) {
			t.Errorf("expected LooksEnglish(%q) = true", text)
		}
	}
}

// TestLooksEnglish_Precision ensures Spanish and French utterances that share
// spellings with English never trip the detector.
func TestLooksEnglish_Precision(t *testing.T) {
	t.Parallel()

	negatives := []string{
		"no me gusta la comida",
		"la familia es muy importante para mi",
		"me encanta el mar y la playa",
		"je ne sais pas quoi dire",
		"il y a un chat sur la table",
		"das ist ein gutes Buch",
		"ik ga morgen naar de winkel",
	}
	for _, text := range negatives {
		if langdetect.LooksEnglish(text) {
			t.Errorf("expected LooksEnglish(%q) = false", text)
		}
	}
}

// TestLooksEnglish_NonLatinScript ensures native-script text is never English.
func TestLooksEnglish_NonLatinScript(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"मुझे खाना पसंद है", "今日はいい天気ですね", "저는 학생입니다"} {
		if langdetect.LooksEnglish(text) {
			t.Errorf("expected LooksEnglish(%q) = false", text)
		}
	}
}

// TestLooksEnglish_TooShort ensures fragments below the token minimum pass.
func TestLooksEnglish_TooShort(t *testing.T) {
	t.Parallel()

	if langdetect.LooksEnglish("the and") {
		t.Error("expected two-token input to be too short to call English")
	}
}

// TestIsGarbled_NeverFlagsShortStrings is the hard floor: anything under six
// characters is accepted regardless of content.
func TestIsGarbled_NeverFlagsShortStrings(t *testing.T) {
	t.Parallel()

	shorts := []string{"", "a", "si", "xk#", "%%%%", "....."}
	for _, text := range shorts {
		if langdetect.IsGarbled(text) {
			t.Errorf("expected IsGarbled(%q) = false for short input", text)
		}
	}
}

// TestIsGarbled_Noise covers transcription noise patterns.
func TestIsGarbled_Noise(t *testing.T) {
	t.Parallel()

	noisy := []string{
		"@#$%^&*()!!",
		"aaaaaaaahhhh",
		"xkcdqrstn hm",
		"??!!..,,..??!!",
	}
	for _, text := range noisy {
		if !langdetect.IsGarbled(text) {
			t.Errorf("expected IsGarbled(%q) = true", text)
		}
	}
}

// TestIsGarbled_CorruptionMarker: a replacement character anywhere marks the
// text as garbled, whatever script surrounds it.
func TestIsGarbled_CorruptionMarker(t *testing.T) {
	t.Parallel()

	marked := []string{
		"नमस्ते � कैसे हो",
		"me gusta � la comida",
		"hello there � friend",
	}
	for _, text := range marked {
		if !langdetect.IsGarbled(text) {
			t.Errorf("expected IsGarbled(%q) = true", text)
		}
	}
	// Below the length floor even a marker is let through.
	if langdetect.IsGarbled("a�b") {
		t.Error("expected short marked input to stay unflagged")
	}
}

// TestIsGarbled_SeparatorRuns: two or more runs of stray separators mean
// stitched-together recognition output, one run is ordinary punctuation.
func TestIsGarbled_SeparatorRuns(t *testing.T) {
	t.Parallel()

	if !langdetect.IsGarbled("hola // que tal __ amigo") {
		t.Error("expected repeated separator runs to be garbled")
	}
	if !langdetect.IsGarbled("me gusta | la comida | mucho") {
		t.Error("expected repeated pipe runs to be garbled")
	}
	if langdetect.IsGarbled("el veinticuatro/seis es mi cumpleaños") {
		t.Error("expected a single separator run to pass")
	}
}

// TestIsGarbled_CleanSpeech covers normal utterances in several languages.
func TestIsGarbled_CleanSpeech(t *testing.T) {
	t.Parallel()

	clean := []string{
		"me gusta mucho la comida española",
		"мне нравится музыка",
		"मुझे हिंदी बोलना पसंद है",
		"what did you do today?",
		"j'aime beaucoup le café",
	}
	for _, text := range clean {
		if langdetect.IsGarbled(text) {
			t.Errorf("expected IsGarbled(%q) = false", text)
		}
	}
}

// TestContainsScript covers the script table per language.
func TestContainsScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		lang string
		want bool
	}{
		{"मुझे खाना पसंद है", "hi", true},
		{"mujhe khana pasand hai", "hi", false},
		{"今天天气很好", "zh", true},
		{"hello there", "zh", false},
		{"きょうはいい天気", "ja", true},
		{"konnichiwa", "ja", false},
		{"안녕하세요", "ko", true},
		{"annyeong", "ko", false},
		{"hola amigo", "es", true},
		{"....", "es", false},
	}
	for _, tt := range tests {
		if got := langdetect.ContainsScript(tt.text, tt.lang); got != tt.want {
			t.Errorf("ContainsScript(%q, %q) = %v, want %v", tt.text, tt.lang, got, tt.want)
		}
	}
}

// TestDetectMismatch_HindiFailsClosed: scriptless text against a Hindi target
// is always a mismatch, even when it does not read as English.
func TestDetectMismatch_HindiFailsClosed(t *testing.T) {
	t.Parallel()

	if !langdetect.DetectMismatch("mujhe khana pasand hai", "hi") {
		t.Error("expected romanised input to mismatch a Hindi target")
	}
	if !langdetect.DetectMismatch("I like to eat food", "hi") {
		t.Error("expected English input to mismatch a Hindi target")
	}
	if langdetect.DetectMismatch("मुझे खाना पसंद है", "hi") {
		t.Error("expected Devanagari input to match a Hindi target")
	}
}

// TestDetectMismatch_LatinTargets: only English-looking text mismatches a
// non-English Latin target.
func TestDetectMismatch_LatinTargets(t *testing.T) {
	t.Parallel()

	if !langdetect.DetectMismatch("I would like to order the food please", "es") {
		t.Error("expected English input to mismatch a Spanish target")
	}
	if langdetect.DetectMismatch("quiero pedir la comida por favor", "es") {
		t.Error("expected Spanish input to match a Spanish target")
	}
	if langdetect.DetectMismatch("anything at all", "en") {
		t.Error("expected English target to never mismatch")
	}
}

// TestDetectMismatch_Empty ensures blank input is never a mismatch.
func TestDetectMismatch_Empty(t *testing.T) {
	t.Parallel()

	if langdetect.DetectMismatch("   ", "hi") {
		t.Error("expected blank input to never mismatch")
	}
}
