package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

var (
	addTitle     string
	addProcess   bool
	reindexFlag  bool
	chunkLimit   int
	extractTable bool
)

var addCmd = &cobra.Command{
	Use:   "add [pdf-path]",
	Short: "Register a paper PDF",
	Long: `Registers a PDF as a new paper. The title defaults to the file name and is
replaced by the PDF metadata title during processing.

Use --process to extract, summarise and index the paper straight away.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var processCmd = &cobra.Command{
	Use:   "process [paper-id]",
	Short: "Extract, summarise and index a paper",
	Long: `Runs the ingest pipeline for a paper: text extraction, multi-length
summaries, key insights, chunking and embedding. Use --reindex to rebuild
only the chunks and the vector collection from the stored text.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List papers",
	Args:  cobra.NoArgs,
	RunE:  runPapers,
}

var showCmd = &cobra.Command{
	Use:   "show [paper-id]",
	Short: "Show paper details and summaries",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var chunkCmd = &cobra.Command{
	Use:   "chunk [paper-id]",
	Short: "List the stored chunks of a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-path]",
	Short: "Extract text, sections and metadata from a PDF",
	Long:  `Runs text extraction on a PDF without registering it as a paper.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [paper-id]",
	Short: "Delete a paper with its chunks, vectors and conversations",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "paper title")
	addCmd.Flags().BoolVarP(&addProcess, "process", "p", false, "process the paper after adding it")
	processCmd.Flags().BoolVar(&reindexFlag, "reindex", false, "rebuild chunks and vectors from stored text")
	chunkCmd.Flags().IntVarP(&chunkLimit, "limit", "n", 0, "maximum number of chunks to print (0 = all)")
	extractCmd.Flags().BoolVar(&extractTable, "tables", false, "also extract tables")

	rootCmd.AddCommand(addCmd, processCmd, papersCmd, showCmd, chunkCmd, extractCmd, deleteCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	paper, err := paperService.AddPaper(cmd.Context(), args[0], addTitle)
	if err != nil {
		return fmt.Errorf("failed to add paper: %w", err)
	}
	if addProcess {
		paper, err = paperService.Process(cmd.Context(), paper.ID)
		if err != nil {
			return fmt.Errorf("failed to process paper: %w", err)
		}
	}

	if jsonFlag {
		return printJSON(cmd, paper)
	}
	cmd.Printf("Added paper %s\n", paper.ID)
	cmd.Printf("  Title: %s\n", paper.Title)
	cmd.Printf("  Status: %s\n", statusLabel(paper.Status))
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	run := paperService.Process
	if reindexFlag {
		run = paperService.Reindex
	}
	paper, err := run(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to process paper: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, paper)
	}
	cmd.Printf("Paper %s is %s\n", paper.ID, statusLabel(paper.Status))
	cmd.Printf("  Title: %s\n", paper.Title)
	cmd.Printf("  Pages: %d\n", paper.NumPages)
	cmd.Printf("  Chunks: %d\n", paper.NumChunks)
	return nil
}

func runPapers(cmd *cobra.Command, _ []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	papers, err := paperService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list papers: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, papers)
	}
	if len(papers) == 0 {
		cmd.Println("No papers yet. Add one with 'paperqa add <pdf>'.")
		return nil
	}

	cmd.Println(titleStyle.Render("Papers"))
	cmd.Println()
	for i := range papers {
		cmd.Printf("  %s  %s\n", papers[i].ID, papers[i].Title)
		cmd.Printf("    Status: %s  Pages: %d  Chunks: %d\n",
			statusLabel(papers[i].Status), papers[i].NumPages, papers[i].NumChunks)
	}
	cmd.Println()
	cmd.Printf("Total: %d papers\n", len(papers))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	paper, err := paperService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get paper: %w", err)
	}

	var tasks []domain.TaskUpdate
	if taskStore != nil {
		tasks, err = taskStore.ListTasks(cmd.Context(), paper.ID)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
	}

	if jsonFlag {
		return printJSON(cmd, struct {
			*domain.Paper
			Tasks []domain.TaskUpdate `json:"tasks,omitempty"`
		}{paper, tasks})
	}

	cmd.Println(titleStyle.Render(paper.Title))
	cmd.Printf("  ID: %s\n", paper.ID)
	if paper.Authors != "" {
		cmd.Printf("  Authors: %s\n", paper.Authors)
	}
	if paper.ArxivID != "" {
		cmd.Printf("  arXiv: %s\n", paper.ArxivID)
	}
	cmd.Printf("  File: %s\n", paper.PDFPath)
	cmd.Printf("  Status: %s\n", statusLabel(paper.Status))
	if paper.ProcessingError != "" {
		cmd.Printf("  Error: %s\n", errorStyle.Render(paper.ProcessingError))
	}
	cmd.Printf("  Pages: %d  Chunks: %d\n", paper.NumPages, paper.NumChunks)

	printBlock(cmd, "Short summary", paper.ShortSummary)
	printBlock(cmd, "Methodology", paper.Methodology)
	printBlock(cmd, "Conclusion", paper.Conclusion)
	if len(paper.KeyFindings) > 0 {
		cmd.Println()
		cmd.Println(headerStyle.Render("Key findings"))
		for _, f := range paper.KeyFindings {
			cmd.Printf("  - %s\n", f)
		}
	}

	if len(tasks) > 0 {
		cmd.Println()
		cmd.Println(headerStyle.Render("Tasks"))
		for _, t := range tasks {
			line := fmt.Sprintf("  %-15s %-10s %3d%%", t.Type, t.Status, t.ProgressPercentage)
			if t.ErrorMessage != "" {
				line += "  " + t.ErrorMessage
			}
			cmd.Println(line)
		}
	}
	return nil
}

func printBlock(cmd *cobra.Command, heading, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	cmd.Println()
	cmd.Println(headerStyle.Render(heading))
	cmd.Println(wrap(text))
}

func runChunk(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	chunks, err := paperService.Chunks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	if chunkLimit > 0 && len(chunks) > chunkLimit {
		chunks = chunks[:chunkLimit]
	}

	if jsonFlag {
		return printJSON(cmd, chunks)
	}
	if len(chunks) == 0 {
		cmd.Println("No chunks. Process the paper first.")
		return nil
	}
	for _, c := range chunks {
		cmd.Printf("  #%d %s, %s\n", c.ChunkIndex, c.ChunkType, pageLabel(c.PageNumber))
		cmd.Printf("      %s\n", mutedStyle.Render(oneLine(preview(c.Content))))
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractor == nil {
		return fmt.Errorf("extractor not configured")
	}

	extract := extractor.Extract
	if extractTable {
		extract = extractor.ExtractWithTables
	}
	doc, err := extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, struct {
			Metadata domain.PDFMetadata `json:"metadata"`
			NumPages int                `json:"num_pages"`
			Sections domain.SectionMap  `json:"sections"`
			Tables   []domain.Table     `json:"tables,omitempty"`
			FullText string             `json:"full_text"`
		}{doc.Metadata, doc.NumPages(), doc.Sections, doc.Tables, doc.FullText})
	}

	if doc.Metadata.Title != "" {
		cmd.Println(titleStyle.Render(doc.Metadata.Title))
	}
	cmd.Printf("  Pages: %d\n", doc.NumPages())
	cmd.Printf("  Characters: %d\n", len([]rune(doc.FullText)))
	if ordered := doc.Sections.Ordered(); len(ordered) > 0 {
		names := make([]string, len(ordered))
		for i, s := range ordered {
			names[i] = s.Name
		}
		cmd.Printf("  Sections: %s\n", strings.Join(names, ", "))
	}
	if extractTable {
		cmd.Printf("  Tables: %d\n", len(doc.Tables))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	if err := paperService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	cmd.Printf("Deleted paper %s\n", args[0])
	return nil
}
