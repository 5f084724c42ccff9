package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMathCaptchaAnswersItsQuestion(t *testing.T) {
	c := NewMathCaptcha()
	for i := 0; i < 50; i++ {
		q, answer := c.Challenge()
		var a, b int
		var op string
		_, err := fmt.Sscanf(q, "%d %s %d", &a, &op, &b)
		assert.NoError(t, err)
		switch op {
		case "+":
			assert.Equal(t, a+b, answer)
		case "-":
			assert.Equal(t, a-b, answer)
			assert.GreaterOrEqual(t, answer, 0)
		default:
			t.Fatalf("unexpected operator in %q", q)
		}
	}
}
