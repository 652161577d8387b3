package budget

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkFit(b *testing.B) {
	para := strings.Repeat("The tenant shall pay rent monthly. ", 20) + "\n\n"
	for _, n := range []int{10, 100, 1000} {
		doc := strings.Repeat(para, n)
		b.Run(fmt.Sprintf("paragraphs=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Fit(doc, 8000)
			}
		})
	}
}
