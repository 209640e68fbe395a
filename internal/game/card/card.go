package card

import "fmt"

// Face representa o estado visual de uma carta na mesa.
type Face int

const (
	FaceHidden Face = iota
	FaceRevealed
	FaceRemoved
)

func (f Face) String() string {
	switch f {
	case FaceHidden:
		return "hidden"
	case FaceRevealed:
		return "revealed"
	case FaceRemoved:
		return "removed"
	}
	return fmt.Sprintf("face(%d)", int(f))
}

// Card é uma carta da mesa. O pairKey é imutável e compartilhado por
// exatamente duas cartas do baralho; só a face muda durante a partida.
type Card struct {
	id      int
	pairKey string
	face    Face
}

func New(id int, pairKey string) *Card {
	return &Card{
		id:      id,
		pairKey: pairKey,
		face:    FaceHidden,
	}
}

func (c *Card) ID() int         { return c.id }
func (c *Card) PairKey() string { return c.pairKey }
func (c *Card) Face() Face      { return c.face }

// Reveal vira a carta para cima. Só faz sentido a partir de hidden;
// quem valida isso é o resolvedor de jogadas.
func (c *Card) Reveal() { c.face = FaceRevealed }

// Hide devolve a carta para baixo depois de um erro de pareamento.
func (c *Card) Hide() { c.face = FaceHidden }

// Remove tira a carta do jogo após um pareamento. Estado terminal.
func (c *Card) Remove() { c.face = FaceRemoved }

func (c *Card) String() string {
	return fmt.Sprintf("card %d (%s, %s)", c.id, c.pairKey, c.face)
}
