package analysis

import "strings"

// Closed Russian-language lexicons. Loaded once at init, never mutated,
// shared freely across goroutines.

var stopwords = newSet(`и в во не что он на я с со как а то все она так его но да ты к у же вы за бы по
только ее мне было вот от меня еще нет о из ему теперь когда даже ну вдруг ли если
уже или ни быть был него до вас нибудь опять уж вам ведь там потом себя ничего ей
может они тут где есть надо ней для мы тебя их чем была сам чтоб без будто чего раз
тоже себе под будет ж тогда кто этот того потому этого какой совсем ним здесь этом
один почти мой тем чтобы нее сейчас были куда зачем всех никогда можно при наконец два
об другой`)

var negativeWords = newSet(`плох ужас отврат не работает слом сломал сломалась брак возврат не советую разочар не подошел дешев хлипк воняет запах`)

var positiveWords = newSet(`отлич супер класс понравилось рекомендую качеств хороший красив удобн`)

func newSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

func containsAny(tokens, lexicon map[string]struct{}) bool {
	for w := range lexicon {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}
