package feed

// DefaultRegistry returns the registry of built-in upstreams. The
// registration order below is the merge order: when two sources index the
// same work, the record from the earlier source survives deduplication, so
// the richer metadata providers come first.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("OpenAlex", func() Source { return openAlexSource{} })
	r.Register("arXiv", func() Source { return arxivSource{} })
	r.Register("PubMed", func() Source { return pubmedSource{} })
	r.Register("Crossref", func() Source { return crossrefSource{} })
	r.Register("bioRxiv", func() Source { return rxivSource{server: "biorxiv"} })
	r.Register("medRxiv", func() Source { return rxivSource{server: "medrxiv"} })
	r.Register("IEEE Xplore", func() Source { return ieeeSource{} })
	r.Register("OpenAIRE", func() Source { return openaireSource{} })
	r.Register("Semantic Scholar", func() Source { return semanticScholarSource{} })
	r.Register("DBLP", func() Source { return dblpSource{} })
	r.Register("Europe PMC", func() Source { return europePMCSource{} })
	r.Register("OpenReview", func() Source { return openReviewSource{} })
	r.Register("NASA ADS", func() Source { return nasaADSSource{} })
	r.Register("CORE", func() Source { return coreSource{} })
	r.Register("DOAJ", func() Source { return doajSource{} })
	return r
}
