package mlmodel

import (
	"strings"
	"unicode"
)

var stopWords = toSet(
	"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она", "так",
	"его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне", "было",
	"вот", "от", "меня", "еще", "нет", "о", "из", "ему", "теперь", "когда", "даже", "ну", "вдруг",
	"ли", "если", "уже", "или", "ни", "быть", "был", "него", "до", "вас", "нибудь", "опять", "уж",
	"вам", "ведь", "там", "потом", "себя", "ничего", "ей", "может", "они", "тут", "где", "есть",
	"надо", "ней", "для", "мы", "тебя", "их", "чем", "была", "сам", "чтоб", "без", "будто", "чего",
	"раз", "тоже", "себе", "под", "будет", "ж", "тогда", "кто", "этот", "того", "потому", "этого",
	"какой", "совсем", "ним", "здесь", "этом", "один", "почти", "мой", "тем", "чтобы", "нее",
	"сейчас", "были", "куда", "зачем", "всех", "никогда", "можно", "при", "наконец", "два", "об",
	"другой", "хоть", "после", "над", "больше", "тот", "через", "эти", "нас", "про", "всего",
	"них", "какая", "много", "разве", "три", "эту", "моя", "впрочем", "хорошо", "свою", "этой",
	"перед", "иногда", "лучше", "чуть", "том", "нельзя", "такой", "им", "более", "всегда", "конечно",
	"всю", "между",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lower-cases text, splits it on anything that is not a letter or
// digit, drops stop words and returns unigrams followed by adjacent bigrams.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	unigrams := words[:0]
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		unigrams = append(unigrams, w)
	}

	tokens := make([]string, 0, 2*len(unigrams))
	tokens = append(tokens, unigrams...)
	for i := 1; i < len(unigrams); i++ {
		tokens = append(tokens, unigrams[i-1]+" "+unigrams[i])
	}
	return tokens
}
