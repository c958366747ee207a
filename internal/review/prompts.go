package review

import (
	"encoding/json"
	"fmt"
)

const fetchClusterSystem = "You are a code review assistant that fetches pull request diffs " +
	"and organizes them into logical groups."

func fetchClusterInstruction(prURL string) string {
	return fmt.Sprintf(`Fetch the PR diffs from the GitHub URL and cluster them into logical groups.

The PR URL is: %s

Steps:
1. Use the gh tool to fetch the PR diffs and metadata
2. Clean up the diffs by removing unnecessary escape characters (like \' for single quotes)
3. Cluster the diffs into logical groups based on:
   - Related functionality
   - Similar file types
   - Dependencies between changes
4. For each cluster, provide:
   - A descriptive name
   - A brief description of what the cluster contains
   - The list of files and their diffs in that cluster

Output only a JSON object with this structure, nothing else:
{
    "clusters": [
        {
            "name": "cluster_name",
            "description": "Brief description of the cluster",
            "files": [
                {
                    "filename": "path/to/file.py",
                    "diff": "cleaned diff content"
                }
            ]
        }
    ]
}`, prURL)
}

const reviewClusterSystem = "You are a senior code reviewer providing detailed, actionable feedback."

func reviewClusterInstruction(index int, cluster Cluster) string {
	name := cluster.Name
	if name == "" {
		name = fmt.Sprintf("cluster_%d", index)
	}
	description := cluster.Description
	if description == "" {
		description = "No description"
	}
	files, _ := json.MarshalIndent(cluster.Files, "", "  ")

	return fmt.Sprintf(`Review the following code cluster and provide detailed feedback.

Cluster: %s
Description: %s

Files in this cluster:
%s

For each significant issue you find, provide:
1. The affected code snippet
2. The start line and end line of the snippet (estimate if not available)
3. A detailed explanation of the issue
4. Suggested improvements
5. Severity level (high, medium, low)

Focus on:
- Security vulnerabilities
- Performance issues
- Code quality and maintainability
- Best practices violations
- Potential bugs

Output only a JSON object, nothing else:
{
    "cluster_name": "%s",
    "reviews": [
        {
            "code_snippet": "relevant code",
            "start_line": 10,
            "end_line": 15,
            "issue": "detailed issue description",
            "suggestion": "suggested improvement",
            "severity": "high/medium/low"
        }
    ]
}`, name, description, files, name)
}

const filterReviewsSystem = "You are a code review curator who keeps only actionable, valuable feedback."

func filterReviewsInstruction(reviews []ClusterReview) string {
	encoded, _ := json.MarshalIndent(reviews, "", "  ")

	return fmt.Sprintf(`Filter the following reviews to keep only actionable, valuable feedback.

Reviews to filter:
%s

Remove reviews that are:
- Nitpicky or overly pedantic
- Purely stylistic without clear benefit
- Already handled by automated tools
- Too vague or non-specific
- Duplicate or redundant

Keep reviews that are:
- Security-related
- Performance-impacting
- Bug-causing
- Maintainability-improving
- Best practice violations with clear impact

Output the filtered reviews as a formatted markdown string that will be posted as a PR comment.
Use this format:

## Code Review Summary

### High Priority Issues
[List high severity issues with code snippets and line numbers]

### Medium Priority Issues
[List medium severity issues]

### Low Priority Issues
[List low severity issues]

### Overall Assessment
[Brief summary of the changes and overall quality]`, encoded)
}

const postCommentSystem = "You post review summaries to GitHub pull requests using the gh CLI."

func postCommentInstruction(prURL, summary string) string {
	return fmt.Sprintf(`Post the following review comment to the GitHub PR: %s

Review content:
%s

Use the gh tool to post this comment to the PR.
When done, reply with a short confirmation of what was posted.`, prURL, summary)
}
