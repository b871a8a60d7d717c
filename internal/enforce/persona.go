// Package enforce guards the model reply just before it is spoken: the reply
// must be in the target language and native script, and for Hindi it must
// keep the tutor's casual register and feminine first-person voice. Models
// drift on all three under conversational pressure; this package fixes what
// it can locally and re-asks the model once for what it cannot.
package enforce

import "strings"

// formalToCasual maps formal Hindi vocabulary to the casual Hindustani
// equivalents the tutor persona uses. An empty replacement drops the word.
var formalToCasual = map[string]string{
	"रोचक":      "मज़ेदार",
	"कृपया":     "",
	"वास्तव में": "सच में",
	"अत्यंत":    "बहुत",
	"अवश्य":     "ज़रूर",
	"किन्तु":    "पर",
	"परन्तु":    "लेकिन",
	"तथा":       "और",
	"एवं":       "और",
	"अतः":       "तो",
	"यदि":       "अगर",
}

// feminineRewrites fixes first-person masculine verb forms to the feminine
// forms the persona uses. Only auxiliaries bound to हूँ are touched;
// third-person forms (करता है, गया था) stay as the model wrote them.
var feminineRewrites = [][2]string{
	{"रहा हूँ", "रही हूँ"},
	{"चुका हूँ", "चुकी हूँ"},
	{"गया हूँ", "गई हूँ"},
	{"ता हूँ", "ती हूँ"},
	// Anusvara spelling variant of the auxiliary.
	{"रहा हूं", "रही हूं"},
	{"चुका हूं", "चुकी हूं"},
	{"गया हूं", "गई हूं"},
	{"ता हूं", "ती हूं"},
}

// ApplyPersona rewrites a Hindi reply into the tutor's voice: casual
// vocabulary and feminine first person. Replies in other languages pass
// through unchanged.
func ApplyPersona(reply, language string) string {
	if language != "hi" {
		return reply
	}
	out := reply
	for _, r := range feminineRewrites {
		out = strings.ReplaceAll(out, r[0], r[1])
	}
	for formal, casual := range formalToCasual {
		if casual == "" {
			out = strings.ReplaceAll(out, formal+" ", "")
			out = strings.ReplaceAll(out, formal, "")
			continue
		}
		out = strings.ReplaceAll(out, formal, casual)
	}
	return strings.Join(strings.Fields(out), " ")
}
