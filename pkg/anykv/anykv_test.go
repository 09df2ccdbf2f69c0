package anykv_test

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/anykv"
)

func ExampleStore() {
	s := anykv.New()

	anykv.Set(s, "counter", 0)
	anykv.Modify(s, "counter", func(v int) int { return v + 1 })

	anykv.Set(s, "metrics", []float64{1.0, 2.0})
	anykv.Modify(s, "metrics", func(v []float64) []float64 { return append(v, 3.0) })

	fmt.Println(anykv.Get[int](s, "counter"))
	fmt.Println(anykv.Get[[]float64](s, "metrics"))

	// Output:
	// 1
	// [1 2 3]
}
