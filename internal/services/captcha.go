package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Captcha produces a question for the signup form and its expected answer.
type Captcha interface {
	Challenge() (question string, answer int)
}

// MathCaptcha asks for the sum or difference of two digits.
type MathCaptcha struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMathCaptcha() *MathCaptcha {
	return &MathCaptcha{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *MathCaptcha) Challenge() (string, int) {
	s.mu.Lock()
	a, b, op := s.rnd.Intn(10), s.rnd.Intn(10), s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// keep the answer non-negative
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// FixedCaptcha always asks the same question.
type FixedCaptcha struct {
	Question string
	Answer   int
}

func (f FixedCaptcha) Challenge() (string, int) {
	return f.Question, f.Answer
}
