package resolve

import "fmt"

const issueDetailsSystem = "You fetch GitHub issue details using the gh CLI."

func issueDetailsInstruction(issueURL string) string {
	return fmt.Sprintf(`Get the issue details for the url %q using the github cli.
Return the issue title and description.`, issueURL)
}

const analyzeIssueSystem = "You are a senior software engineer tasked to analyze an issue. " +
	"Your analysis will be used to guide the implementation of the fix."

func analyzeIssueInstruction(issueURL, issueDetails string) string {
	return fmt.Sprintf(`Consider the following issue:

<issue_description>
%s
%s
</issue_description>

Let's first explore and analyze the repository to understand where the issue is located. Try to locate the specific files and code sections that need to be modified.

1. First explore the repo structure
2. Identify the relevant files that likely need changes
3. Once you've confirmed the error, identify the specific code sections that need to be modified

Provide your findings in this format:
<analysis>
    <file>file that needs changes</file>
    <changes_needed>Description of the specific changes needed</changes_needed>
</analysis>

Current working directory is the root of the repo, so paths for tools should be relative to the root of the repo.`, issueURL, issueDetails)
}

const implementChangesSystem = "You are a senior software engineer tasked to implement changes to the codebase."

func implementChangesInstruction(issueURL, issueDetails, analysis string) string {
	return fmt.Sprintf(`Consider the following issue:
<issue_description>
%s
%s
</issue_description>

Your lead engineer has already analyzed the issue and provided this analysis for reference.

<lead_analysis>
%s
</lead_analysis>
<lead_instructions>
I've already taken care of all changes to any of the test files described in the PR.
This means you DON'T have to modify the testing logic or any of the tests in any way!
</lead_instructions>

Let's implement the necessary changes:
1. Edit the sourcecode of the repo to resolve the issue
2. Think about edge cases and make sure your fix handles them as well

Important Limitations:
1. DO NOT use command piping (|) - each command must be run independently
2. DO NOT use command chaining (&&, ||, ;) - each command must be run separately
3. DO NOT use redirection (> or >>) - output will be captured automatically
4. DO NOT use command substitution ($()) - commands must be run directly
5. For long files, the output of the command will be truncated. Accordingly, you should use 'sed' to read parts of the file.

Guidelines for using these tools:
1. Always start by using 'ls' to check the current directory structure
2. Use 'find' with specific paths, not wildcards in the middle of paths
3. Read file contents before making changes using 'cat' or 'sed'
4. Use 'grep' to locate specific code patterns that need modification
5. Use 'sed' for making precise text changes
6. Use 'wc' to check file sizes before reading
7. Use file operations (cp, mv, rm, mkdir, touch) when creating new files or restructuring

Remember to:
- Always verify changes after making them
- Handle edge cases appropriately
- Keep the changes focused and minimal
- Document your changes clearly
- Run each command independently without piping or chaining
- Start with simple commands like 'ls' to understand the directory structure before using more complex commands`,
		issueURL, issueDetails, analysis)
}

const createPRSystem = "You are a senior software engineer creating a PR to fix an issue."

func createPRInstruction(issueURL, issueDetails string) string {
	return fmt.Sprintf(`You have already implemented the changes to the codebase. Now your task is to stage the changes, commit them and create a PR.

The issue details are:
<issue_details>
%s
%s
</issue_details>

You have access to tools that can run git and gh commands.

1. Create a new branch with an appropriate branch name according to the issue details, with the prefix %q.
2. Stage all the files and commit them with an appropriate commit message according to the issue details.
3. Push the branch to the remote repository.
4. Create a PR with same title as the commit message using github cli.

Then summarize your actions in a few sentences.`, issueURL, issueDetails, branchPrefix)
}
