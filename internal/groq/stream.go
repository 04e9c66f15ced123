package groq

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// CollectDeltas reads an SSE completion stream and concatenates every
// choices[0].delta.content fragment into one string. Chunks that fail to
// parse are skipped; an in-band API error terminates the stream with an
// error alongside whatever text was collected before it.
func CollectDeltas(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return buf.String(), nil
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return buf.String(), fmt.Errorf("groq API error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) > 0 {
			buf.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return buf.String(), fmt.Errorf("reading stream: %w", err)
	}
	return buf.String(), nil
}
