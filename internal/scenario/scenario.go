// Package scenario holds the conversational furniture of a tutoring session:
// language names, topic hints, opening greetings, roleplay openers, thinking
// fillers, clarification phrases, and encouragements. Everything is data so a
// deployment can extend the tables with a YAML overlay instead of a code
// change.
package scenario

import (
	"math/rand/v2"
	"strings"
)

// SupportedLanguages is the set of ISO 639-1 codes the tutor can hold a
// conversation in.
var SupportedLanguages = []string{"en", "es", "fr", "de", "nl", "it", "pt", "hi", "zh", "ja", "ko"}

// languageNames maps ISO 639-1 codes to display names used inside prompts.
var languageNames = map[string]string{
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"nl": "Dutch",
	"it": "Italian",
	"pt": "Portuguese",
	"hi": "Hindi",
	"zh": "Chinese (Mandarin)",
	"ja": "Japanese",
	"ko": "Korean",
	"en": "English",
}

// topicContext describes each topic for the system prompt. The hint is never
// announced to the learner.
var topicContext = map[string]string{
	"daily":   "Guide the conversation around their day, activities, plans, and daily routine.",
	"food":    "Guide the conversation around food, cooking, eating out, and meals.",
	"work":    "Guide the conversation around work, school, career, and professional life.",
	"family":  "Guide the conversation around family, friends, and relationships.",
	"travel":  "Guide the conversation around travel, trips, vacations, and places.",
	"hobbies": "Guide the conversation around hobbies, interests, and free time activities.",
	"weekend": "Guide the conversation around weekend plans, leisure, and relaxation.",
	"random":  "Let the conversation flow naturally to any topic.",
}

// IsSupported reports whether lang is a supported target language code.
func IsSupported(lang string) bool {
	_, ok := languageNames[lang]
	return ok
}

// LanguageName returns the display name for an ISO 639-1 code, or a generic
// placeholder for unknown codes.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "the target language"
}

// TopicContext returns the prompt hint for a topic, falling back to the
// free-flowing "random" hint.
func TopicContext(topic string) string {
	if hint, ok := topicContext[topic]; ok {
		return hint
	}
	return topicContext["random"]
}

// Topics returns the known topic keys.
func Topics() []string {
	keys := make([]string, 0, len(topicContext))
	for k := range topicContext {
		keys = append(keys, k)
	}
	return keys
}

// ---- greetings ----------------------------------------------------------------

// topicGreetings holds opening lines per language and topic. Languages
// without a table fall back to English; the conversation itself still runs in
// the target language once the learner replies.
var topicGreetings = map[string]map[string][]string{
	"hi": {
		"daily": {
			"अच्छा... आज दिन कैसा जा रहा है?",
			"हम्म... आज कैसा रहा अब तक?",
			"तो... आज क्या चल रहा है?",
		},
		"food": {
			"हम्म... आज कुछ अच्छा खाया?",
			"अच्छा... आज खाने में क्या बना?",
			"तो... आज क्या खाने का मन है?",
		},
		"work": {
			"तो... आज काम में क्या चल रहा है?",
			"अच्छा... ऑफिस कैसा रहा आज?",
			"हम्म... आज काम पर कुछ interesting हुआ?",
		},
		"family": {
			"अच्छा... घर पर सब कैसे हैं?",
			"तो... family में क्या चल रहा है?",
			"हम्म... कोई family news?",
		},
		"travel": {
			"अरे... कहीं घूमने का प्लान है क्या?",
			"तो... last trip कहाँ गए थे?",
			"हम्म... कहाँ जाना है अगली बार?",
		},
		"hobbies": {
			"अच्छा... आजकल क्या करते हो free time में?",
			"तो... कोई नया hobby?",
			"हम्म... weekend पे क्या करना पसंद है?",
		},
		"weekend": {
			"तो... इस weekend क्या plan है?",
			"अच्छा... पिछला weekend कैसा रहा?",
			"हम्म... कुछ exciting plan है?",
		},
		"random": {
			"अरे हाय! कैसे हो? आज क्या किया?",
			"हम्म... चलो कुछ बात करते हैं!",
			"अच्छा... आज कुछ नया?",
		},
	},
	"es": {
		"daily":   {"¡Hola! ¿Cómo va tu día?", "¿Qué tal? ¿Cómo estás hoy?"},
		"food":    {"Hmm... ¿Qué has comido hoy?", "¿Cocinaste algo rico?"},
		"work":    {"¿Qué tal el trabajo hoy?", "¿Cómo va todo en la oficina?"},
		"family":  {"¿Cómo está tu familia?", "¿Qué tal en casa?"},
		"travel":  {"¿Tienes planes de viaje?", "¿A dónde quieres ir?"},
		"hobbies": {"¿Qué haces en tu tiempo libre?", "¿Algún hobby nuevo?"},
		"weekend": {"¿Qué planes tienes para el fin de semana?", "¿Cómo fue tu fin de semana?"},
		"random":  {"¡Hola! ¿Cómo estás?", "¿Qué tal? ¿Todo bien?"},
	},
	"nl": {
		"daily":   {"Hoi! Hoe gaat je dag?", "Hé! Hoe gaat het vandaag?"},
		"food":    {"Hmm... Wat heb je vandaag gegeten?", "Iets lekkers gekookt?"},
		"work":    {"Hoe gaat het op het werk?", "Drukke dag gehad?"},
		"family":  {"Hoe gaat het met je familie?", "Alles goed thuis?"},
		"travel":  {"Heb je reisplannen?", "Waar wil je naartoe?"},
		"hobbies": {"Wat doe je in je vrije tijd?", "Nieuwe hobby's?"},
		"weekend": {"Wat zijn je weekendplannen?", "Hoe was je weekend?"},
		"random":  {"Hoi! Hoe gaat het?", "Hé! Alles goed?"},
	},
	"fr": {
		"daily":   {"Salut! Comment va ta journée?", "Ça va? Comment tu vas aujourd'hui?"},
		"food":    {"Hmm... Qu'est-ce que tu as mangé aujourd'hui?", "Tu as cuisiné quelque chose de bon?"},
		"work":    {"Comment ça va au travail?", "Journée chargée?"},
		"family":  {"Comment va ta famille?", "Tout va bien à la maison?"},
		"travel":  {"Tu as des projets de voyage?", "Où veux-tu aller?"},
		"hobbies": {"Qu'est-ce que tu fais pendant ton temps libre?", "De nouveaux hobbies?"},
		"weekend": {"Quels sont tes plans pour le week-end?", "C'était comment ton week-end?"},
		"random":  {"Salut! Ça va?", "Quoi de neuf?"},
	},
	"de": {
		"daily":   {"Hi! Wie läuft dein Tag?", "Hey! Wie geht's dir heute?"},
		"food":    {"Hmm... Was hast du heute gegessen?", "Was Leckeres gekocht?"},
		"work":    {"Wie läuft's bei der Arbeit?", "Stressiger Tag?"},
		"family":  {"Wie geht's deiner Familie?", "Alles gut zu Hause?"},
		"travel":  {"Hast du Reisepläne?", "Wohin möchtest du?"},
		"hobbies": {"Was machst du in deiner Freizeit?", "Neue Hobbys?"},
		"weekend": {"Was sind deine Wochenendpläne?", "Wie war dein Wochenende?"},
		"random":  {"Hi! Wie geht's?", "Was gibt's Neues?"},
	},
	"en": {
		"daily":   {"Hey! How's your day going?", "What's up? How are you today?"},
		"food":    {"Hmm... What did you eat today?", "Cook anything good lately?"},
		"work":    {"How's work going?", "Busy day at work?"},
		"family":  {"How's your family doing?", "What's happening at home?"},
		"travel":  {"Any travel plans?", "Where do you want to go next?"},
		"hobbies": {"What do you do for fun?", "Any new hobbies?"},
		"weekend": {"What are your weekend plans?", "How was your weekend?"},
		"random":  {"Hey! How are you?", "What's new?"},
	},
}

// roleplayOpeners holds opening lines for roleplay mode, keyed by language.
// The %s is replaced by the scenario description as given by the learner.
var roleplayOpeners = map[string][]string{
	"es": {"Vale, imaginemos: %s. ¡Empecemos! ¿Qué deseas?", "Bien, la escena es: %s. Tú primero, ¿sí?"},
	"fr": {"D'accord, imaginons : %s. On commence ! Tu désires ?", "Bien, la scène : %s. À toi de commencer !"},
	"de": {"Okay, stellen wir uns vor: %s. Los geht's! Was darf's sein?", "Gut, die Szene: %s. Du fängst an!"},
	"nl": {"Oké, stel je voor: %s. We beginnen! Wat mag het zijn?", "Goed, de scène: %s. Jij begint!"},
	"it": {"Va bene, immaginiamo: %s. Cominciamo! Cosa desideri?", "Bene, la scena: %s. Inizia tu!"},
	"pt": {"Certo, vamos imaginar: %s. Vamos começar! O que deseja?", "Boa, a cena: %s. Você começa!"},
	"hi": {"अच्छा, सोचो: %s. चलो शुरू करते हैं! बताओ?", "ठीक है, scene ये है: %s. तुम शुरू करो!"},
	"zh": {"好，我们想象一下：%s。开始吧！你想要什么？", "好的，场景是：%s。你先说！"},
	"ja": {"じゃあ、想像してみよう：%s。始めよう！何にする？", "はい、場面は：%s。どうぞ！"},
	"ko": {"좋아요, 상상해 봐요: %s. 시작해요! 뭘 원하세요?", "네, 장면은: %s. 먼저 말해 보세요!"},
	"en": {"Okay, let's imagine: %s. Let's start! What would you like?", "Alright, the scene: %s. You go first!"},
}

// Greeting returns a random topic-aware opening line in the target language.
// Unknown languages fall back to English, unknown topics to "random".
func Greeting(language, topic string) string {
	langGreetings, ok := topicGreetings[language]
	if !ok {
		langGreetings = topicGreetings["en"]
	}
	pool, ok := langGreetings[topic]
	if !ok || len(pool) == 0 {
		pool = langGreetings["random"]
	}
	if len(pool) == 0 {
		return "Hello!"
	}
	return pool[rand.IntN(len(pool))]
}

// RoleplayOpener returns a random roleplay opening line with the scenario
// description substituted in.
func RoleplayOpener(language, scenarioDesc string) string {
	pool, ok := roleplayOpeners[language]
	if !ok {
		pool = roleplayOpeners["en"]
	}
	line := pool[rand.IntN(len(pool))]
	return strings.Replace(line, "%s", scenarioDesc, 1)
}

// ---- fillers, clarifications, encouragements ----------------------------------

// thinkingFillers are short phrases played while the reply is being
// generated. They buy time without carrying content.
var thinkingFillers = map[string][]string{
	"es": {"Hmm...", "A ver...", "Pues...", "Bueno...", "Déjame pensar...", "Oye...", "Mira..."},
	"fr": {"Hmm...", "Alors...", "Bon...", "Eh bien...", "Voyons...", "Écoute...", "Tu vois..."},
	"de": {"Hmm...", "Also...", "Na ja...", "Moment mal...", "Lass mich überlegen...", "Schau mal...", "Weißt du..."},
	"nl": {"Hmm...", "Nou...", "Even denken...", "Laat me denken...", "Tja...", "Kijk...", "Weet je..."},
	"it": {"Hmm...", "Allora...", "Dunque...", "Vediamo...", "Fammi pensare...", "Senti...", "Guarda..."},
	"pt": {"Hmm...", "Então...", "Bem...", "Deixa eu pensar...", "Olha...", "Sabe...", "Veja..."},
	"hi": {"हम्म...", "अच्छा...", "देखो...", "सोचने दो...", "ठीक है...", "सुनो...", "बताओ..."},
	"zh": {"嗯...", "那个...", "让我想想...", "好的...", "这样啊...", "你看...", "是这样..."},
	"ja": {"えーと...", "そうですね...", "ちょっと...", "なるほど...", "うーん...", "あのね...", "ねえ..."},
	"ko": {"음...", "그러니까...", "잠깐만...", "생각해보면...", "아...", "있잖아...", "그게..."},
	"en": {"Hmm...", "Let me think...", "Well...", "Okay...", "Right...", "You know...", "So..."},
}

// clarifications ask the learner to repeat, phrased in the target language
// as a gentle request rather than an admission the tutor did not understand.
// None of these may contain the refusal phrasing the enforcer screens for,
// or the enforcer would rewrite its own output.
var clarifications = map[string][]string{
	"es": {"¿Perdón? ¿Puedes repetir?", "¿Me lo repites una vez más, por favor?"},
	"fr": {"Pardon ? Tu peux répéter ?", "Tu peux le redire une fois, s'il te plaît ?"},
	"de": {"Wie bitte? Kannst du das wiederholen?", "Magst du das noch einmal sagen?"},
	"nl": {"Sorry, kun je dat herhalen?", "Zeg je het nog een keer, alsjeblieft?"},
	"it": {"Scusa, puoi ripetere?", "Me lo ridici un'altra volta?"},
	"pt": {"Desculpa, podes repetir?", "Dizes outra vez, por favor?"},
	"hi": {"फिर से बोलो ना?", "एक बार और बोलोगे?"},
	"zh": {"可以再说一遍吗？", "麻烦再说一次好吗？"},
	"ja": {"もう一度言ってくれる？", "もう一回お願いできる？"},
	"ko": {"다시 말해 줄래요?", "한 번 더 말해 줄래요?"},
	"en": {"Sorry, could you say that again?", "One more time, please?"},
}

// encouragements celebrate a successful translation attempt.
var encouragements = map[string][]string{
	"es": {"¡Muy bien!", "¡Perfecto!", "¡Eso es!"},
	"fr": {"Très bien !", "Parfait !", "C'est ça !"},
	"de": {"Sehr gut!", "Perfekt!", "Genau!"},
	"nl": {"Goed zo!", "Perfect!", "Precies!"},
	"it": {"Bravissimo!", "Perfetto!", "Esatto!"},
	"pt": {"Muito bem!", "Perfeito!", "É isso!"},
	"hi": {"बहुत बढ़िया!", "एकदम सही!", "वाह!"},
	"zh": {"很好！", "完全正确！", "太棒了！"},
	"ja": {"いいですね！", "完璧！", "その通り！"},
	"ko": {"잘했어요!", "완벽해요!", "바로 그거예요!"},
	"en": {"Great job!", "Perfect!", "That's it!"},
}

// Filler returns a random thinking filler in the given language, avoiding any
// phrase in exclude. With an exhausted pool the exclusion is ignored.
func Filler(language string, exclude ...string) string {
	pool, ok := thinkingFillers[language]
	if !ok {
		pool = thinkingFillers["en"]
	}
	if len(exclude) > 0 {
		excluded := make(map[string]struct{}, len(exclude))
		for _, e := range exclude {
			excluded[e] = struct{}{}
		}
		var fresh []string
		for _, f := range pool {
			if _, skip := excluded[f]; !skip {
				fresh = append(fresh, f)
			}
		}
		if len(fresh) > 0 {
			pool = fresh
		}
	}
	return pool[rand.IntN(len(pool))]
}

// Clarification returns a random repeat-request phrase in the given language.
func Clarification(language string) string {
	pool, ok := clarifications[language]
	if !ok {
		pool = clarifications["en"]
	}
	return pool[rand.IntN(len(pool))]
}

// Encouragement returns a random praise phrase in the given language.
func Encouragement(language string) string {
	pool, ok := encouragements[language]
	if !ok {
		pool = encouragements["en"]
	}
	return pool[rand.IntN(len(pool))]
}
