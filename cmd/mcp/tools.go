package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func loginTool() mcp.Tool {
	return mcp.NewTool("login",
		mcp.WithDescription("Authenticate against the insight backend and store the session credential"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Account email"),
		),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("Account password"),
		),
	)
}

func listDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the session's documents with their processing state"),
	)
}

func uploadDocumentTool() mcp.Tool {
	return mcp.NewTool("upload_document",
		mcp.WithDescription("Upload a PDF from the local filesystem into the session"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file to upload"),
		),
	)
}

func removeDocumentTool() mcp.Tool {
	return mcp.NewTool("remove_document",
		mcp.WithDescription("Remove a document from the session and the backend"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID to remove"),
		),
	)
}

func openDocumentTool() mcp.Tool {
	return mcp.NewTool("open_document",
		mcp.WithDescription("Select a document for viewing, fetching its content if needed"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID to open"),
		),
	)
}

func goToPageTool() mcp.Tool {
	return mcp.NewTool("go_to_page",
		mcp.WithDescription("Jump the session to a specific page of a document"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID to navigate within"),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("1-based page number"),
		),
	)
}

func generateInsightsTool() mcp.Tool {
	return mcp.NewTool("generate_insights",
		mcp.WithDescription("Generate insight cards for a set of documents against a job description"),
		mcp.WithArray("document_ids",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Document IDs to analyze"),
		),
		mcp.WithString("job_description",
			mcp.Required(),
			mcp.Description("The job-to-be-done driving the analysis"),
		),
	)
}

func listCardsTool() mcp.Tool {
	return mcp.NewTool("list_cards",
		mcp.WithDescription("List the current insight cards with headings and source pages"),
	)
}

func cardDetailTool() mcp.Tool {
	return mcp.NewTool("card_detail",
		mcp.WithDescription("Fetch or generate the detailed insight for one card"),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID, or job-description for the job card"),
		),
	)
}

func cardAudioTool() mcp.Tool {
	return mcp.NewTool("card_audio",
		mcp.WithDescription("Fetch or generate the podcast audio for one card and download it locally"),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID, or job-description for the job card"),
		),
	)
}

func playCardAudioTool() mcp.Tool {
	return mcp.NewTool("play_card_audio",
		mcp.WithDescription("Play a card's podcast audio through the viewer page, pausing any other card"),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID, or job-description for the job card"),
		),
	)
}

func pauseCardAudioTool() mcp.Tool {
	return mcp.NewTool("pause_card_audio",
		mcp.WithDescription("Pause a card's audio if it is the one playing"),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID, or job-description for the job card"),
		),
	)
}

func restartCardAudioTool() mcp.Tool {
	return mcp.NewTool("restart_card_audio",
		mcp.WithDescription("Restart a card's audio from the beginning"),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID, or job-description for the job card"),
		),
	)
}
