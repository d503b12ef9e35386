// Package smartdoc is an in-process Go client for smartdoc's semantic word matching.
//
// It extracts text from PDF and DOCX files, finds document words that are
// semantically close to a search term, suggests related words and renders the
// highlighted document as HTML or PDF. Embeddings come from any Embedder you supply,
// or from an OpenAI-compatible or Ollama endpoint.
//
//	client, _ := smartdoc.New(smartdoc.WithOpenAI("http://localhost:8000/v1", "", "all-MiniLM-L6-v2"))
//	defer client.Close()
//
//	text, _ := smartdoc.Parse("report.pdf", data)
//	res, _ := client.Search(ctx, "happy", text)
//	fmt.Println(res.SemanticMatches, res.SuggestedWords)
//
// Embedding failures never fail a search: semantic matches and suggestions come back
// empty while exact matches and highlighting still work.
package smartdoc
