package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const ignoreComment = "# eva local config, history and logs"

// EnsureIgnored makes sure .eva/ is listed in the project's .gitignore so the
// history database and logs stay out of the repository. It creates the file
// when missing and leaves it alone when a covering pattern is present.
func EnsureIgnored(projectDir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	gitignorePath := filepath.Join(projectDir, ".gitignore")

	present, err := isIgnored(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if present {
		return nil
	}
	return appendToGitignore(gitignorePath, DirName+"/")
}

// isIgnored reports whether the .gitignore at path already covers .eva.
func isIgnored(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversDir(line) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversDir checks if a gitignore line covers the .eva directory.
func coversDir(line string) bool {
	switch strings.TrimPrefix(line, "/") {
	case DirName, DirName + "/", DirName + "/*", DirName + "/**", DirName + "/**/*":
		return true
	}
	return false
}

// appendToGitignore appends pattern, creating the file if needed and keeping
// a blank line between the existing content and the new block.
func appendToGitignore(path string, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	var toWrite string
	if len(content) == 0 {
		toWrite = ignoreComment + "\n" + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n" + ignoreComment + "\n" + pattern + "\n"
	}

	_, err = file.WriteString(toWrite)
	return err
}
