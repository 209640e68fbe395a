package deck

import (
	"math/rand/v2"

	"github.com/sckim-a/memoryGame/internal/game/card"
	"github.com/sckim-a/memoryGame/internal/game/theme"
)

// Generate produz o baralho embaralhado de uma partida: 2 × pairCount
// cartas, cada pairKey aparecendo exatamente duas vezes.
//
// O embaralhamento usa rng.Shuffle (Fisher–Yates), que gera permutações
// uniformes. Nunca use um sort com comparador aleatório aqui: ele enviesa
// fortemente a permutação e deixa o jogo previsível.
//
// O id de cada carta é a sua posição final na mesa, estável pela partida
// inteira; é esse id que os clientes mandam no flip.
func Generate(mode string, pairCount int, rng *rand.Rand) ([]*card.Card, error) {
	values, err := theme.Values(mode, pairCount)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, 2*pairCount)
	for _, v := range values {
		keys = append(keys, v, v)
	}

	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	cards := make([]*card.Card, len(keys))
	for i, key := range keys {
		cards[i] = card.New(i, key)
	}
	return cards, nil
}
