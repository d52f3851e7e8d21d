package generator

import "fmt"

// chapterPrompt pairs a chapter name with the prompt that produces it.
type chapterPrompt struct {
	name   string
	prompt string
}

// chapterPrompts returns the prompts in generation order. The introduction
// is generated last on purpose: by then the conversation history contains
// every other chapter, so the model can summarize what the guide actually
// covers. The assembled document still places it first.
func chapterPrompts(displayName, snippet string) []chapterPrompt {
	return []chapterPrompt{
		{
			name: "chapter_1",
			prompt: fmt.Sprintf("I'm writing a guide and I need your help to write some of the chapters.\n\n"+
				"The guide focuses on the challenges of creating custom Python scripts for creating data pipelines from %s and how PyAirbyte simplifies this process.\n\n"+
				"[PyAirbyte](https://airbyte.com/product/pyairbyte) is an open-source Python library that packages Airbyte connectors and makes them available as code, while removing the need for hosted services or an Airbyte Cloud account.\n\n"+
				"Please help me write the following chapter. Don't include an introduction and conclusion:\n\n"+
				"Title: Traditional Methods for Creating %s Data Pipelines\n"+
				"Cover the following:\n"+
				"Outline conventional methods, like custom Python scripts.\n"+
				"Describe specific pain points in extracting data from %s.\n"+
				"Explain the impact of these challenges on data pipeline efficiency and maintenance.\n",
				displayName, displayName, displayName),
		},
		{
			name: "chapter_2",
			prompt: fmt.Sprintf("Let's continue with the next chapter. Don't include an introduction and conclusion:\n\n"+
				"Title: Implementing a Python Data Pipeline for %s with PyAirbyte\n"+
				"Include the following Python code snippets and explain what's happening in each section:\n%s\n",
				displayName, snippet),
		},
		{
			name: "chapter_3",
			prompt: fmt.Sprintf("Let's continue with the next chapter. Don't include an introduction and conclusion:\n\n"+
				"Title: Why Using PyAirbyte for %s Data Pipelines:\n"+
				"Cover the following:\n"+
				"PyAirbyte can be installed with pip, and the only requirement is to have Python installed.\n"+
				"You can easily get and configure the available source connectors. It's also possible to install custom source connectors.\n"+
				"By enabling the selection of specific data streams, PyAirbyte conserves computing resources and streamlines data processing.\n"+
				"With support for multiple caching backends like DuckDB, MotherDuck, Postgres, Snowflake and BigQuery, PyAirbyte offers flexibility. If users don't define a specific Cache, DuckDB is used as the default cache.\n"+
				"PyAirbyte is able to read data incrementally. This feature is key for efficiently handling large datasets and reducing the load on data sources.\n"+
				"PyAirbyte is compatible with various Python libraries, like Pandas and SQL-based tools, which opens up a wide range of possibilities for data transformation, analysis, integration into existing Python-based data workflows, orchestrators and AI frameworks.\n"+
				"PyAirbyte is ideally suited for enabling AI applications.\n",
				displayName),
		},
		{
			name:   "conclusion",
			prompt: "Let's write a very short conclusion chapter for this guide.",
		},
		{
			name:   "introduction",
			prompt: "Let's write a very short introduction, highlighting some of the challenges and how PyAirbyte could reduce them.",
		},
	}
}

// snippetPrompt asks the model for a configuration literal shaped by the
// connector's schema, and nothing else.
func snippetPrompt(spec []byte) string {
	return fmt.Sprintf("Generate an example configuration based on the following JSON spec. Provide only the configuration, without explanations: %s", spec)
}
