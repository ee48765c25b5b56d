package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkodas/llamagate/internal/types"
)

// ChatCompletions relays a chat completion to the upstream provider. The
// request's own stream flag decides between one blocking round trip and a
// chunk-by-chunk SSE relay.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("failed to read request body"))
		return
	}
	r.Body.Close()

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request format"))
		return
	}
	if req.Model == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("model is required"))
		return
	}

	h.Logger.Info("chat completion",
		"request_id", requestID,
		"model", req.Model,
		"stream", req.Stream,
		"messages", len(req.Messages),
	)

	if !req.Stream {
		h.relayBuffered(w, r, &req, requestID)
		return
	}
	h.relayStream(w, r, &req, requestID)
}

// relayBuffered performs one blocking round trip and relays the response.
// A failed call retried to exhaustion yields a single error outcome to the
// caller, never a partial result.
func (h *Handlers) relayBuffered(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest, requestID string) {
	resp, err := h.Upstream.CreateChatCompletion(r.Context(), req)
	if err != nil {
		h.Logger.Warn("chat completion failed", "request_id", requestID, "error", err)
		h.writeUpstreamError(w, err)
		return
	}

	if resp.Usage == nil {
		resp.Usage = h.estimateUsage(req, completionText(resp))
	}

	writeJSON(w, http.StatusOK, resp)
}

// relayStream opens the upstream stream and forwards each chunk to the
// caller as it arrives, in arrival order, flushing per chunk. Once the
// first chunk has been relayed there is no retry: a mid-stream upstream
// failure surfaces as an abrupt termination and already-sent chunks stand.
func (h *Handlers) relayStream(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest, requestID string) {
	stream, err := h.Upstream.StreamChatCompletion(r.Context(), req)
	if err != nil {
		h.Logger.Warn("chat stream connect failed", "request_id", requestID, "error", err)
		h.writeUpstreamError(w, err)
		return
	}
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stats := &streamStats{}

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Caller disconnects also land here: the cancelled request
			// context fails the upstream read. Either way the stream is
			// over and Close releases the upstream connection.
			h.Logger.Warn("stream terminated",
				"request_id", requestID, "chunks", stats.count, "error", err)
			return
		}

		stats.observe(chunk)

		if _, err := w.Write(types.FormatSSE(chunk)); err != nil {
			h.Logger.Warn("caller write failed",
				"request_id", requestID, "chunks", stats.count, "error", err)
			return
		}
		flusher.Flush()
	}

	if req.WantsUsage() && stats.usage == nil {
		h.writeUsageChunk(w, req, stats)
		flusher.Flush()
	}

	_, _ = io.WriteString(w, types.SSEDone)
	flusher.Flush()

	h.Logger.Info("chat stream complete", "request_id", requestID, "chunks", stats.count)
}

// writeUsageChunk emits an estimated usage chunk when the caller asked for
// usage but the upstream never provided one.
func (h *Handlers) writeUsageChunk(w http.ResponseWriter, req *types.ChatCompletionRequest, stats *streamStats) {
	model := stats.model
	if model == "" {
		model = req.Model
	}

	chunk := types.ChatCompletionChunk{
		ID:      fmt.Sprintf("chatcmpl-usage-%d", time.Now().Unix()),
		Object:  types.ObjectChatCompletionChunk,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []types.ChunkChoice{},
		Usage:   h.estimateUsage(req, stats.content.String()),
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return
	}
	_, _ = w.Write(types.FormatSSE(data))
}

// estimateUsage counts prompt and completion tokens locally. Counting
// failures degrade to zeroes rather than failing the relay.
func (h *Handlers) estimateUsage(req *types.ChatCompletionRequest, completion string) *types.Usage {
	usage := &types.Usage{}
	if h.Tokenizer == nil {
		return usage
	}

	if prompt, err := h.Tokenizer.CountMessages(req.Messages, req.Model); err == nil {
		usage.PromptTokens = prompt
	}
	if completion != "" {
		if tokens, err := h.Tokenizer.CountTokens(completion, req.Model); err == nil {
			usage.CompletionTokens = tokens
		}
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage
}

// completionText extracts the assistant text from a buffered response.
func completionText(resp *types.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content.String()
}

// streamStats accumulates metadata from relayed chunks: the model name,
// upstream-provided usage, and the assistant text for local estimation.
type streamStats struct {
	count   int
	model   string
	usage   *types.Usage
	content strings.Builder
}

func (s *streamStats) observe(data []byte) {
	s.count++

	var chunk types.ChatCompletionChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return // relay malformed chunks untouched, just skip accounting
	}

	if s.model == "" && chunk.Model != "" {
		s.model = chunk.Model
	}
	if chunk.Usage != nil {
		s.usage = chunk.Usage
	}
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			s.content.WriteString(choice.Delta.Content)
		}
	}
}
