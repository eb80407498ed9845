package lexer

// DefaultKnownCommands is the allow-list of utility names that are
// classified as Command when they start a command segment.
var DefaultKnownCommands = []string{
	// file and text utilities
	"ls", "cd", "cp", "mv", "rm", "mkdir", "rmdir", "chmod", "chown",
	"cat", "less", "more", "head", "tail", "sort", "uniq", "wc", "diff", "patch",
	"grep", "awk", "sed", "find", "tar",
	// network
	"curl", "wget", "ssh", "scp", "rsync",
	// containers and system
	"docker", "kubectl", "systemctl", "journalctl", "ps", "kill",
	// package managers
	"npm", "pip", "apt", "yum",
	// version control and toolchains
	"git", "make", "gcc", "g++", "python", "node", "java", "go", "rust", "cargo",
}
