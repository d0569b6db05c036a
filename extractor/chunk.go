package extractor

// chunkText splits text into fixed-size contiguous rune windows with no
// overlap and no boundary snapping. Each chunk is processed independently;
// ordering only affects which duplicate record instance survives
// aggregation.
func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
