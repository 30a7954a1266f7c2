package summarizer

// The two prompts mirror the two-pass shape of the pipeline: each chunk is
// summarized independently, then a second call unifies the per-chunk
// summaries into one structured summary. Both demand the same JSON shape
// so a single-chunk run can skip the merge pass entirely.

const chunkSummarizerPrompt = `Your task is to summarize the key information from a transcript chunk (an excerpt from the transcript of a YouTube video) as a short title and clear, concise bullet points.

Follow these steps:

1. Carefully read the transcript chunk to identify the most important points, arguments, takeaways, and conclusions.
2. Organize the key information into a logical structure.
3. Write the summary:
   - The title should concisely capture the main topic of the chunk (5-10 words).
   - Group the bullet points under one or more section headings.
   - Aim for 4-7 bullet points per section, each 1-2 sentences long.
   - Write in the same language as the input chunk.

Respond with a single JSON object in exactly this shape:
{
  "title": "Chunk title",
  "sections": [
    {"heading": "Section heading", "bullets": ["Bullet point 1", "Bullet point 2"]}
  ]
}

Note: be extra cautious to start your JSON object with { and end it with }. Do not add any text outside the JSON object.`

const summariesMergerPrompt = `Your task is to compile individual chunk summaries from a YouTube video transcript into one coherent, well-structured overall summary with a main title, sub-sections, and informative bullet points.

Follow these steps:

1. Review all chunk summaries to identify overarching themes, main arguments, and crucial conclusions.
2. Group related points together and organize them into logical sub-sections. Do not repeat the same point in multiple sections.
3. Write the summary:
   - The main title should capture the central topic of the entire video (5-10 words).
   - Aim for 3-5 sub-sections, each with a clear and descriptive heading.
   - Aim for 3-6 bullet points per sub-section capturing the essential ideas and takeaways.
   - Write in the same language as the input summaries.

Respond with a single JSON object in exactly this shape:
{
  "title": "Main title",
  "sections": [
    {"heading": "Sub-section heading", "bullets": ["Bullet point 1", "Bullet point 2"]}
  ]
}

Note: be extra cautious to start your JSON object with { and end it with }. Do not add any text outside the JSON object.`
