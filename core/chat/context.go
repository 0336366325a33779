package chat

import (
	"strings"

	"github.com/mudler/xlog"

	models "github.com/agentrix/agentrix/dbmodels"
)

var separator = strings.Repeat("=", 50)

const documentsInstruction = "IMPORTANT: Use the information from these documents to answer questions. " +
	"When asked about specific details (names, dates, projects, skills, etc.), refer directly to the content above."

// AssembleContext builds the effective system prompt: the agent's base prompt
// followed by a delimited block containing the extracted text of every
// readable, non-blank document. A document that fails extraction or yields
// only whitespace is skipped; it never aborts the rest of the assembly. With
// nothing to include, the base prompt is returned unchanged.
//
// The delimiter literals are load-bearing: they are part of what the model
// sees, so the output must be byte-identical for identical inputs.
func AssembleContext(basePrompt string, files []models.UploadedFile, extractor DocumentExtractor) string {
	var blocks []string
	for _, f := range files {
		content, err := extractor.Extract(f.Path, f.Filename)
		if err != nil {
			xlog.Warn("Skipping unreadable document", "file", f.Filename, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		blocks = append(blocks, "=== File: "+f.Filename+" ===\n"+content+"\n"+separator+"\n")
	}

	if len(blocks) == 0 {
		return basePrompt
	}

	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\n" + separator)
	sb.WriteString("\nYOU HAVE ACCESS TO THE FOLLOWING UPLOADED DOCUMENTS:\n")
	sb.WriteString(separator + "\n\n")
	sb.WriteString(strings.Join(blocks, "\n"))
	sb.WriteString("\n" + separator)
	sb.WriteString("\n" + documentsInstruction)
	sb.WriteString("\n" + separator)
	return sb.String()
}
