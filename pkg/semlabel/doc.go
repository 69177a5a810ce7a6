// Package semlabel provides a retrieval-based hierarchical text classifier.
// It embeds a labeled corpus, indexes the embeddings in an in-process ANN
// graph, and classifies queries by letting their nearest neighbors vote.
//
// Quick start:
//
//	c, err := semlabel.New(
//	    semlabel.WithExamples([]semlabel.Example{
//	        {Text: "湖人 击败 勇士", Label: "体育##篮球"},
//	        {Text: "考研 报名 开始", Label: "教育##考研"},
//	    }),
//	    semlabel.WithK(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	pred, _ := c.Classify(context.Background(), "勇士 总决赛 失利")
//	fmt.Println(pred.Label, pred.Confidence)
//
// A Classifier is safe for concurrent use. Corpus updates go through
// Rebuild, which swaps in a freshly built index without pausing readers.
package semlabel
