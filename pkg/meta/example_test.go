package meta_test

import (
	"fmt"

	"github.com/matzehuels/wardley/pkg/meta"
	"github.com/matzehuels/wardley/pkg/position"
)

func ExampleApplyMove() {
	overlay := ""
	overlay, _ = meta.ApplyMove("kettle", overlay, position.Point{X: 12, Y: -4})
	overlay, _ = meta.ApplyMove(meta.FlowLabelKey("shop", "kettle"), overlay, position.Point{X: 0, Y: -45})
	fmt.Println(overlay)
	// Output:
	// [{"name":"kettle","x":12,"y":-4},{"name":"flow_text_shop_kettle","x":0,"y":-45}]
}

func ExampleResolve() {
	p, _ := meta.Resolve("A", "[]", position.Point{X: 0, Y: -30})
	fmt.Printf("%v %v\n", p.X, p.Y)
	// Output:
	// 0 -30
}
