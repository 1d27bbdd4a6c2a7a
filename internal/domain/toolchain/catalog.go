package toolchain

func required(name, typ string) ParamSpec {
	return ParamSpec{Name: name, Type: typ, Required: true}
}

func optional(name, typ string, def any) ParamSpec {
	return ParamSpec{Name: name, Type: typ, Default: def}
}

func next(t ToolType, hint, reason string) SuggestedToolReference {
	return SuggestedToolReference{ToolType: t, ToolNameHint: hint, Reason: reason}
}

// DefaultContracts is the built-in tool catalog served by this repository.
func DefaultContracts() []ToolContract {
	return []ToolContract{
		{
			Name:        "create_repository",
			Category:    CategoryRepositoryManagement,
			ToolType:    ToolTypeCreator,
			Description: "Create a new GitHub repository both locally and remotely",
			Method:      "POST",
			Endpoint:    "/github/create-repo",
			Parameters: []ParamSpec{
				required("repo_name", "string"),
				optional("private", "boolean", true),
				optional("description", "string", nil),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeCreator, "initialize_repository", "Initialize the repository locally after creation"),
				next(ToolTypeCreator, "add_gitignore", "Add a .gitignore file to the repository"),
			},
			Examples: []string{
				"Create a new repository called my-project",
				"Make a private GitHub repo named test-app",
				"Set up a new public repository for documentation",
			},
		},
		{
			Name:         "initialize_repository",
			Category:     CategoryRepositoryManagement,
			ToolType:     ToolTypeCreator,
			Description:  "Initialize a local Git repository",
			Method:       "POST",
			Endpoint:     "/repos/init",
			Parameters:   []ParamSpec{required("repo_path", "string")},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeCreator, "create_branch", "Create initial branches for development"),
			},
			Examples: []string{
				"Initialize git in the current directory",
				"Set up git tracking for my project",
				"Create a local git repository",
			},
		},
		{
			Name:        "clone_repository",
			Category:    CategoryRepositoryManagement,
			ToolType:    ToolTypeRetriever,
			Description: "Clone a repository from GitHub",
			Method:      "POST",
			Endpoint:    "/repos/clone",
			Parameters: []ParamSpec{
				required("repo_url", "string"),
				required("local_path", "string"),
			},
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeAnalyzer, "list_branches", "View available branches in the cloned repository"),
			},
			Examples: []string{
				"Clone the repository from https://github.com/user/repo",
				"Download a copy of the project repository",
				"Get the code from GitHub",
			},
		},
		{
			Name:        "create_branch",
			Category:    CategoryBranchOperations,
			ToolType:    ToolTypeCreator,
			Description: "Create a new branch in the repository",
			Method:      "POST",
			Endpoint:    "/repos/create-branch",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("branch_name", "string"),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeModifier, "add_multiple_files", "Add files to the new branch"),
			},
			Examples: []string{
				"Create a feature branch called feature/new-login",
				"Make a new branch for bug fixes",
				"Create development branch",
			},
		},
		{
			Name:         "list_branches",
			Category:     CategoryBranchOperations,
			ToolType:     ToolTypeRetriever,
			Description:  "List all branches in a repository",
			Method:       "GET",
			Endpoint:     "/github/list-branches/{repo_name}",
			Parameters:   []ParamSpec{required("repo_name", "string")},
			RequiresAuth: true,
			Examples: []string{
				"Show all branches in my repository",
				"List available branches",
				"What branches exist in the project?",
			},
		},
		{
			Name:        "merge_branches",
			Category:    CategoryBranchOperations,
			ToolType:    ToolTypeModifier,
			Description: "Merge one branch into another",
			Method:      "POST",
			Endpoint:    "/repos/merge",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("source_branch", "string"),
				optional("target_branch", "string", "main"),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "push_changes", "Push the merged changes to remote"),
			},
			Examples: []string{
				"Merge feature branch into main",
				"Combine development branch with master",
				"Integrate changes from bugfix branch",
			},
		},
		{
			Name:        "add_file",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeCreator,
			Description: "Add a single file to the repository",
			Method:      "POST",
			Endpoint:    "/repos/add-file",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("file_name", "string"),
				required("content", "string"),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "commit_changes", "Commit the added file"),
			},
			Examples: []string{
				"Add README.md file to the repository",
				"Create a new Python script",
				"Add configuration file",
			},
		},
		{
			Name:        "add_multiple_files",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeCreator,
			Description: "Add multiple files to the repository at once",
			Method:      "POST",
			Endpoint:    "/repos/add-files",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("files", "array"),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "commit_changes", "Commit all added files"),
			},
			Examples: []string{
				"Add multiple source files to the project",
				"Upload batch of configuration files",
				"Add all documentation files",
			},
		},
		{
			Name:        "list_files",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeRetriever,
			Description: "List files in a directory",
			Method:      "GET",
			Endpoint:    "/repos/list-files/{repo_path}",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				optional("pattern", "string", nil),
			},
			RequiresAuth: true,
			Examples: []string{
				"Show all files in the repository",
				"List directory contents",
				"What files are in the project?",
			},
		},
		{
			Name:        "read_file",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeRetriever,
			Description: "Read the contents of a file",
			Method:      "GET",
			Endpoint:    "/repos/read-file/{repo_path}/{file_name}",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("file_name", "string"),
			},
			RequiresAuth: true,
			Examples: []string{
				"Show the contents of README.md",
				"Read the configuration file",
				"Display the source code",
			},
		},
		{
			Name:        "commit_changes",
			Category:    CategoryCommitOperations,
			ToolType:    ToolTypeExecutor,
			Description: "Stage and commit changes",
			Method:      "POST",
			Endpoint:    "/repos/commit",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("commit_message", "string"),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "push_changes", "Push committed changes to remote"),
			},
			Examples: []string{
				"Commit changes with message 'Added new feature'",
				"Save current changes",
				"Create a commit for bug fixes",
			},
		},
		{
			Name:        "push_changes",
			Category:    CategoryCommitOperations,
			ToolType:    ToolTypeExecutor,
			Description: "Push changes to remote repository",
			Method:      "POST",
			Endpoint:    "/repos/push",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				optional("remote_name", "string", "origin"),
				optional("branch", "string", nil),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeCreator, "create_pull_request", "Create a pull request for the pushed changes"),
			},
			Examples: []string{
				"Push changes to GitHub",
				"Upload commits to remote",
				"Sync with origin",
			},
		},
		{
			Name:        "stage_all_changes",
			Category:    CategoryCommitOperations,
			ToolType:    ToolTypeModifier,
			Description: "Stage all changes for commit",
			Method:      "POST",
			Endpoint:    "/repos/add-all",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				optional("include_untracked", "boolean", true),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "commit_changes", "Commit the staged changes"),
			},
			Examples: []string{
				"Stage all modified files",
				"Add all changes for commit",
				"Prepare files for commit",
			},
		},
		{
			Name:        "create_issue",
			Category:    CategoryGitHubAPIOperations,
			ToolType:    ToolTypeCreator,
			Description: "Create an issue on GitHub",
			Method:      "POST",
			Endpoint:    "/github/create-issue",
			Parameters: []ParamSpec{
				required("repo_name", "string"),
				required("title", "string"),
				optional("body", "string", nil),
				optional("labels", "array", nil),
			},
			RequiresAuth: true,
			Examples: []string{
				"Create a bug report issue",
				"Open a new feature request",
				"Report a problem in the repository",
			},
		},
		{
			Name:        "create_pull_request",
			Category:    CategoryGitHubAPIOperations,
			ToolType:    ToolTypeCreator,
			Description: "Create a pull request",
			Method:      "POST",
			Endpoint:    "/github/create-pr",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				required("branch_name", "string"),
				optional("title", "string", nil),
				optional("body", "string", nil),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeRetriever, "list_pull_requests", "View the created pull request"),
			},
			Examples: []string{
				"Create a PR for feature branch",
				"Open pull request for review",
				"Submit changes for merge",
			},
		},
		{
			Name:        "list_pull_requests",
			Category:    CategoryGitHubAPIOperations,
			ToolType:    ToolTypeRetriever,
			Description: "List pull requests of a repository",
			Method:      "GET",
			Endpoint:    "/github/list-prs/{repo_name}",
			Parameters: []ParamSpec{
				required("repo_name", "string"),
				optional("state", "string", "open"),
			},
			RequiresAuth: true,
			Examples: []string{
				"Show open pull requests",
				"List PRs for the project",
			},
		},
		{
			Name:        "create_github_branch",
			Category:    CategoryGitHubAPIOperations,
			ToolType:    ToolTypeCreator,
			Description: "Create a branch on GitHub from an existing branch",
			Method:      "POST",
			Endpoint:    "/github/create-branch",
			Parameters: []ParamSpec{
				required("repo_name", "string"),
				required("branch_name", "string"),
				optional("from_branch", "string", "main"),
			},
			RequiresAuth: true,
			Examples: []string{
				"Create a remote branch from main",
			},
		},
		{
			Name:        "list_repositories",
			Category:    CategoryGitHubAPIOperations,
			ToolType:    ToolTypeRetriever,
			Description: "List user's GitHub repositories",
			Method:      "GET",
			Endpoint:    "/github/list-repos",
			Parameters: []ParamSpec{
				optional("page", "integer", 1),
				optional("per_page", "integer", 30),
			},
			RequiresAuth: true,
			Examples: []string{
				"Show my GitHub repositories",
				"List all my repos",
				"What repositories do I have?",
			},
		},
		{
			Name:        "setup_credentials",
			Category:    CategoryConfiguration,
			ToolType:    ToolTypeModifier,
			Description: "Set up GitHub credentials",
			Method:      "POST",
			Endpoint:    "/auth/setup",
			Parameters: []ParamSpec{
				required("username", "string"),
				required("token", "string"),
			},
			Examples: []string{
				"Configure GitHub access",
				"Set up authentication",
				"Add GitHub credentials",
			},
		},
		{
			Name:        "verify_credentials",
			Category:    CategoryConfiguration,
			ToolType:    ToolTypeValidator,
			Description: "Check whether GitHub credentials are configured",
			Method:      "GET",
			Endpoint:    "/auth/verify",
			Examples: []string{
				"Are my GitHub credentials set?",
			},
		},
		{
			Name:        "generate_gitignore",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeCreator,
			Description: "Generate a .gitignore file",
			Method:      "POST",
			Endpoint:    "/repos/generate-gitignore",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				optional("project_type", "string", nil),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "commit_changes", "Commit the generated .gitignore file"),
			},
			Examples: []string{
				"Create gitignore for Python project",
				"Add gitignore file",
				"Generate ignore file for Node.js",
			},
		},
		{
			Name:        "download_gitignore",
			Category:    CategoryFileOperations,
			ToolType:    ToolTypeCreator,
			Description: "Download a .gitignore template from github/gitignore",
			Method:      "POST",
			Endpoint:    "/repos/download-gitignore",
			Parameters: []ParamSpec{
				required("repo_path", "string"),
				optional("project_type", "string", nil),
			},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeExecutor, "commit_changes", "Commit the downloaded .gitignore file"),
			},
			Examples: []string{
				"Download the official Go gitignore",
			},
		},
		{
			Name:         "detect_project_type",
			Category:     CategoryQuery,
			ToolType:     ToolTypeAnalyzer,
			Description:  "Detect the languages used in a repository",
			Method:       "GET",
			Endpoint:     "/repos/detect-project-type/{repo_path}",
			Parameters:   []ParamSpec{required("repo_path", "string")},
			RequiresAuth: true,
			SuggestedNextTools: []SuggestedToolReference{
				next(ToolTypeCreator, "generate_gitignore", "Generate a .gitignore for the detected project type"),
			},
			Examples: []string{
				"What kind of project is this?",
			},
		},
		{
			Name:         "check_status",
			Category:     CategoryQuery,
			ToolType:     ToolTypeAnalyzer,
			Description:  "Check repository status",
			Method:       "GET",
			Endpoint:     "/repos/status/{repo_path}",
			Parameters:   []ParamSpec{required("repo_path", "string")},
			RequiresAuth: true,
			Examples: []string{
				"Show git status",
				"Check repository changes",
				"What's the current status?",
			},
		},
	}
}

// DefaultRegistry builds the registry of the built-in catalog.
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultContracts()...)
}
