package ingest

// Config tunes the ingestion pipeline.
//
// ChunkSize / ChunkOverlap: character window for the splitter.
// EmbedBatchSize:  chunks per embedding-provider call.
// DeleteBatchSize: chunk rows removed per delete statement during cleanup.
// Workers:         concurrent document pipelines.
type Config struct {
	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	DeleteBatchSize int
	Workers         int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 200
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = 10
	}
	if c.DeleteBatchSize <= 0 {
		c.DeleteBatchSize = 500
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}
