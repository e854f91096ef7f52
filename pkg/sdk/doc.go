// Package moviesearch embeds the movie search engine in a Go program
// without the HTTP server.
//
// The client connects to Redis 8 with the search module, creates the
// movie and keyword indexes on demand and exposes the three hybrid
// retrieval paths plus the embedding backfill.
//
//	client, _ := moviesearch.New(ctx,
//	    moviesearch.WithRedis("localhost:6379", ""),
//	    moviesearch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	_, _ = client.EnsureSchema(ctx)
//	res, _ := client.Search(ctx, "Back to the Future", moviesearch.SearchParams{
//	    Mode:  moviesearch.ModeNative,
//	    Limit: 5,
//	})
//	for _, m := range res.Movies {
//	    fmt.Println(m.Title, m.Year)
//	}
//
// Without WithEmbedder the client falls back to a deterministic local
// feature-hashing embedder, which is enough for tests and demos.
package moviesearch
