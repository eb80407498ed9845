package safety

// RulePack is the serializable form of a rule set. The built-in rules are a
// RulePack, and packs loaded from disk are merged on top of them.
type RulePack struct {
	// DangerousCommands are base commands that raise the level to High.
	DangerousCommands []string `toml:"dangerous_commands"`
	// CriticalCommands are base commands that raise the level to Critical.
	// A critical command is implicitly dangerous.
	CriticalCommands []string `toml:"critical_commands"`
	// CriticalWarnings overrides the extra warning emitted for a critical command.
	CriticalWarnings map[string]string `toml:"critical_warnings"`
	// DangerousFlags are exact word matches (case-sensitive).
	DangerousFlags []string `toml:"dangerous_flags"`
	// SystemPaths are substrings that mark a word as touching system directories.
	SystemPaths []string `toml:"system_paths"`
	// KnownCommands extends the tokenizer allow-list.
	KnownCommands []string `toml:"known_commands"`
	// Explanations maps a base command to a one-line description.
	Explanations map[string]string `toml:"explanations"`
	// Alternatives maps a base command to safer suggestions.
	Alternatives map[string][]string `toml:"alternatives"`
	// SafeFlags maps a base command to harmless, commonly used flags.
	SafeFlags map[string][]string `toml:"safe_flags"`
	// MockOutputs are sample outputs selected by first match in priority order.
	MockOutputs []MockOutputRule `toml:"mock_outputs"`
}

// MockOutputRule is the uncompiled form of a MockOutput.
type MockOutputRule struct {
	// Priority orders evaluation; lower values are tried first.
	Priority int `toml:"priority"`
	// Pattern is a regular expression matched against the trimmed command.
	Pattern string `toml:"pattern"`
	// Output is the canned sample.
	Output string `toml:"output"`
	// Examples are commands that produce this kind of output.
	Examples []string `toml:"examples"`
}

// builtinRules is the knowledge base shipped with cmdlens.
var builtinRules = RulePack{
	DangerousCommands: []string{
		"rm", "del", "rmdir", "format", "fdisk", "dd",
		"chmod", "chown", "chgrp", "usermod", "userdel",
		"shutdown", "reboot", "poweroff", "halt",
		"iptables", "ufw", "firewall-cmd",
		"mount", "umount", "mkfs", "fsck",
		"kill", "killall", "pkill",
		"sudo", "su", "passwd",
	},
	CriticalCommands: []string{"rm"},
	CriticalWarnings: map[string]string{
		"rm": "rm command can permanently delete files",
	},
	DangerousFlags: []string{
		"-rf", "-fr", "-r", "-f", "--force", "--no-preserve-root",
		"-y", "--yes", "--assume-yes", "--no-confirm",
	},
	SystemPaths: []string{"/etc/", "/usr/", "/var/", "/sys/", "/proc/", "/dev/"},
	Explanations: map[string]string{
		"ls":   "Lists files and directories in the current location",
		"find": "Searches for files and directories based on criteria",
		"grep": "Searches for text patterns in files",
		"tar":  "Creates or extracts compressed archive files",
		"curl": "Transfers data to/from URLs (safe for reading)",
		"git":  "Version control system commands",
		"ps":   "Shows running processes",
		"df":   "Shows disk space usage",
	},
	Alternatives: map[string][]string{
		"rm": {
			"Use trash-cli: `trash-put filename` (moves to trash)",
			"Use safe-rm: `safe-rm filename` (has built-in protections)",
			"Move to .trash directory: `mv filename ~/.trash/`",
		},
		"find": {
			"Add -type f to only find files: `find . -type f -name \"*.txt\"`",
			"Use -print0 with xargs for safer handling",
		},
		"chmod": {
			"Use symbolic modes: `chmod u+x script.sh` instead of numeric",
			"Check current permissions first: `ls -la filename`",
		},
	},
	SafeFlags: map[string][]string{
		"ls":   {"-la", "-lh", "-ltr", "-1"},
		"find": {"-type f", "-type d", "-name", "-iname"},
		"grep": {"-i", "-n", "-r", "-l"},
		"tar":  {"-tzf", "-czf", "-xzf"},
		"curl": {"-I", "-s", "-L", "-o"},
	},
	MockOutputs: []MockOutputRule{
		{
			Priority: 10,
			Pattern:  `^ls(\s|$)`,
			Output:   "file1.txt  file2.js  documents/  pictures/  downloads/",
			Examples: []string{"ls -la", "ls -lh", "ls *.txt"},
		},
		{
			Priority: 20,
			Pattern:  `^find(\s|$)`,
			Output:   "./documents/report.pdf\n./pictures/vacation.jpg\n./downloads/installer.sh",
			Examples: []string{`find . -name "*.txt"`, "find /home -type f"},
		},
		{
			Priority: 30,
			Pattern:  `^grep(\s|$)`,
			Output:   "line 42: const result = data.filter(item => item.active)\nline 156: return activeItems.length",
			Examples: []string{`grep -r "pattern" .`, `grep "error" log.txt`},
		},
		{
			Priority: 40,
			Pattern:  `^tar(\s|$)`,
			Output:   "archive.tar.gz\nfile1.txt\nfile2.js\ndocuments/",
			Examples: []string{"tar -xzvf archive.tar.gz", "tar -czf backup.tar.gz folder/"},
		},
		{
			Priority: 50,
			Pattern:  `^curl(\s|$)`,
			Output:   "HTTP/1.1 200 OK\nContent-Type: application/json\n{\"status\": \"success\", \"data\": {...}}",
			Examples: []string{"curl https://api.example.com", `curl -X POST -d "data" url`},
		},
		{
			Priority: 60,
			Pattern:  `^git(\s|$)`,
			Output:   "On branch main\nYour branch is up to date with 'origin/main'.\n\nnothing to commit, working tree clean",
			Examples: []string{"git status", "git log --oneline", "git diff HEAD~1"},
		},
		{
			Priority: 70,
			Pattern:  `^ps(\s|$)`,
			Output: "  PID TTY          TIME CMD\n" +
				" 1234 pts/0    00:00:00 bash\n" +
				" 5678 pts/0    00:00:01 node\n" +
				" 9012 pts/0    00:00:00 ps",
			Examples: []string{"ps aux", "ps -ef | grep node"},
		},
		{
			Priority: 80,
			Pattern:  `^df(\s|$)`,
			Output: "Filesystem     1K-blocks    Used Available Use% Mounted on\n" +
				"/dev/sda1       10255636 3567096   6174468  37% /\n" +
				"tmpfs             816896       0    816896   0% /dev/shm",
			Examples: []string{"df -h", "df -T"},
		},
	},
}
