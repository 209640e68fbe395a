package theme

import (
	"errors"
	"fmt"
	"strconv"
)

// Modos de tema suportados. Um modo desconhecido cai no numérico, que é o
// comportamento padrão esperado pelos clientes.
const (
	ModeNumber = "number"
	ModeEmoji  = "emoji"
)

// ErrInsufficientContent indica que o tema não possui valores distintos
// suficientes para o número de pares pedido.
var ErrInsufficientContent = errors.New("theme does not have enough distinct values")

// emojis é o catálogo visual do modo emoji.
var emojis = []string{
	"🍎", "🍌", "🍇", "🍉", "🍒", "🍓", "🥝", "🍍",
	"🥑", "🍑", "🍋", "🍊", "🥥", "🍅", "🌽", "🥕",
	"🥔", "🍆", "🥦", "🥬", "🌶️", "🧄", "🧅", "🍄",
}

// Normalize devolve o nome canônico do modo.
func Normalize(mode string) string {
	if mode == ModeEmoji {
		return ModeEmoji
	}
	return ModeNumber
}

// Values resolve um modo para pairCount valores visuais distintos.
// Retorna ErrInsufficientContent quando o catálogo do tema é menor que o
// número de pares, ou quando pairCount não é positivo.
func Values(mode string, pairCount int) ([]string, error) {
	if pairCount <= 0 {
		return nil, fmt.Errorf("pair count %d: %w", pairCount, ErrInsufficientContent)
	}

	switch Normalize(mode) {
	case ModeEmoji:
		if pairCount > len(emojis) {
			return nil, fmt.Errorf("emoji theme has %d values, need %d: %w", len(emojis), pairCount, ErrInsufficientContent)
		}
		values := make([]string, pairCount)
		copy(values, emojis[:pairCount])
		return values, nil

	default:
		values := make([]string, pairCount)
		for i := range values {
			values[i] = strconv.Itoa(i + 1)
		}
		return values, nil
	}
}
