package semlabel_test

import (
	"context"
	"fmt"
	"log"

	"github.com/arliden/semlabel/pkg/semlabel"
)

func Example() {
	c, err := semlabel.New(
		semlabel.WithExamples([]semlabel.Example{
			{Text: "湖人 击败 勇士 夺得 总冠军", Label: "体育##篮球"},
			{Text: "考研 报名 人数 创 新高", Label: "教育##考研"},
		}),
		semlabel.WithK(1),
		semlabel.WithStrategy("best"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	pred, err := c.Classify(context.Background(), "湖人 勇士 总决赛")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(pred.Label)
	// Output: 体育##篮球
}
