package completion

import (
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

var (
	dotRelativePrefix = regexp.MustCompile(`^\.\.?[\\/]`)
	windowsDrivePath  = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
	gitBashDrivePath  = regexp.MustCompile(`^/([a-zA-Z])(/.*)?$`)
)

// Placeholder details for a tilde path when no home directory is known.
const (
	homePlaceholderPosix   = "$HOME"
	homePlaceholderWindows = "Home directory"
)

type pathType int

const (
	pathRelative pathType = iota
	pathTilde
	pathAbsolute
)

// ResourceResolverConfig holds the collaborators of a ResourceResolver.
type ResourceResolverConfig struct {
	FileService FileService

	// Configuration supplies the CDPATH mode. A nil Configuration disables
	// CDPATH completions.
	Configuration Configuration

	// ProcessEnv is consulted when the shell does not report its environment.
	// Defaults to the environment of the current process.
	ProcessEnv EnvLookup

	Logger *zap.Logger
}

// ResourceResolver turns a provider's request for filesystem entries into
// path completions for the word under the cursor.
type ResourceResolver struct {
	fs         FileService
	config     Configuration
	processEnv EnvLookup
	logger     *zap.Logger
}

// NewResourceResolver creates a ResourceResolver.
func NewResourceResolver(cfg ResourceResolverConfig) *ResourceResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fs := cfg.FileService
	if fs == nil {
		fs = DiskFileService{}
	}
	processEnv := cfg.ProcessEnv
	if processEnv == nil {
		processEnv = ProcessEnv
	}
	return &ResourceResolver{
		fs:         fs,
		config:     cfg.Configuration,
		processEnv: processEnv,
		logger:     logger,
	}
}

// resolveRequest carries the state shared by the steps of one Resolve call.
type resolveRequest struct {
	sep            string
	windowsStyle   bool
	shell          ShellType
	rules          shellRules
	caps           Capabilities
	provider       string
	lastWord       string
	lastWordFolder string
	hasDotPrefix   bool
	replaceIndex   int
}

func (q *resolveRequest) item(label string, kind Kind, detail string) RawCompletion {
	return RawCompletion{
		Label:             PlainLabel(label),
		Kind:              kind,
		Detail:            detail,
		Provider:          q.provider,
		ReplacementIndex:  q.replaceIndex,
		ReplacementLength: len(q.lastWord),
	}
}

// relative adds a ./ prefix unless the typed folder already has one.
func (q *resolveRequest) relative(text string) string {
	if q.hasDotPrefix {
		return text
	}
	return "." + q.sep + text
}

// Resolve lists the filesystem completions for the word before the cursor.
// Every returned item replaces exactly that word.
func (r *ResourceResolver) Resolve(
	ctx context.Context,
	cfg ResourceRequestConfig,
	promptValue string,
	cursorPosition int,
	providerID string,
	caps Capabilities,
	shell ShellType,
) []RawCompletion {
	sep := cfg.PathSeparator
	if sep == "" {
		sep = string(filepath.Separator)
	}
	windowsStyle := sep == `\`
	if windowsStyle {
		promptValue = strings.ReplaceAll(promptValue, "/", sep)
	}

	// A file can live in any folder, so asking for files implies folders.
	foldersRequested := cfg.FoldersRequested || cfg.FilesRequested
	filesRequested := cfg.FilesRequested
	if !foldersRequested || cfg.Cwd == "" {
		return nil
	}
	if u, err := url.Parse(string(cfg.Cwd)); err != nil || u.Scheme != uri.FileScheme {
		r.logger.Debug("ignoring resource request with a non-file cwd", zap.String("cwd", string(cfg.Cwd)))
		return nil
	}

	cursorPosition = clampCursor(promptValue, cursorPosition)
	lastWord := lastWordOf(promptValue[:cursorPosition])
	lastWordFolder := folderOf(lastWord, sep, windowsStyle)

	q := &resolveRequest{
		sep:            sep,
		windowsStyle:   windowsStyle,
		shell:          shell,
		rules:          rulesFor(shell),
		caps:           caps,
		provider:       providerID,
		lastWord:       lastWord,
		lastWordFolder: lastWordFolder,
		hasDotPrefix:   dotRelativePrefix.MatchString(lastWordFolder),
		replaceIndex:   cursorPosition - len(lastWord),
	}

	typ := q.classify()
	var folder uri.URI
	switch typ {
	case pathTilde:
		home := r.homeDir(q)
		if home == "" {
			return []RawCompletion{q.item(lastWordFolder, KindFolder, q.homePlaceholder())}
		}
		folder = uri.File(filepath.Join(home, unescapeSpaces(lastWordFolder[1:])))
	case pathAbsolute:
		if q.rules.unixPathsOnWindows {
			folder = uri.File(gitBashToWindowsPath(lastWordFolder, q.caps.lookupEnv("SystemDrive", r.processEnv)))
		} else {
			folder = uri.File(unescapeSpaces(lastWordFolder))
		}
	default:
		folder = uri.File(filepath.Join(cfg.Cwd.Filename(), unescapeSpaces(lastWordFolder)))
	}

	stat, err := r.fs.Resolve(ctx, folder, ResolveOptions{ResolveSingleChildDescendants: true})
	if err != nil {
		r.logger.Debug("resource folder not found", zap.String("folder", string(folder)), zap.Error(err))
		return nil
	}
	if len(stat.Children) == 0 {
		return nil
	}

	var completions []RawCompletion

	// The folder being typed goes first; it is an exact match for the input.
	//   (relative) `|`       -> `.`
	//   (relative) `./src/|` -> `./src/`
	//   (absolute) `/src/|`  -> `/src/`
	//   (tilde)    `~/src/|` -> `~/src/`
	label := lastWordFolder
	if typ == pathRelative {
		label = "."
		if lastWordFolder != "" {
			label = q.relative(lastWordFolder)
		}
	}
	completions = append(completions, q.item(label, KindFolder, q.friendlyPath(folder, KindFolder)))

	for _, child := range stat.Children {
		var kind Kind
		switch {
		case child.IsDirectory:
			kind = KindFolder
		case filesRequested && child.IsFile:
			kind = KindFile
		default:
			continue
		}
		if kind == KindFile && !extensionAllowed(child.Name, cfg.FileExtensions) {
			continue
		}

		label := lastWordFolder
		if label != "" && !strings.HasSuffix(label, sep) {
			label += sep
		}
		label += child.Name
		if typ == pathRelative {
			label = q.relative(label)
		}
		if kind == KindFolder && !strings.HasSuffix(label, sep) {
			label += sep
		}

		detail := q.friendlyPath(child.Resource, kind)
		if child.IsSymbolicLink && child.SymlinkTarget != "" {
			detail += " -> " + child.SymlinkTarget
		}
		completions = append(completions, q.item(label, kind, detail))
	}

	if typ == pathRelative && strings.HasPrefix(promptValue, "cd ") {
		completions = append(completions, r.cdPathCompletions(ctx, q)...)
	}

	if typ == pathRelative {
		parent := ".." + sep
		if lastWordFolder != "" {
			parent = q.relative(lastWordFolder + parent)
		}
		parentDir := uri.File(filepath.Dir(folder.Filename()))
		completions = append(completions, q.item(parent, KindFolder, q.friendlyPath(parentDir, KindFolder)))
	}

	if typ == pathRelative && !strings.ContainsAny(lastWordFolder, `\/`) {
		detail := q.homePlaceholder()
		if home := r.homeDir(q); home != "" {
			detail = q.friendlyPath(uri.File(home), KindFolder)
		}
		completions = append(completions, q.item("~", KindFolder, detail))
	}

	return completions
}

// cdPathCompletions lists the folders under each $CDPATH entry. Entries are
// read independently; one that cannot be read is skipped.
func (r *ResourceResolver) cdPathCompletions(ctx context.Context, q *resolveRequest) []RawCompletion {
	if r.config == nil {
		return nil
	}
	mode := r.config.CDPathMode()
	if mode != CDPathRelative && mode != CDPathAbsolute {
		return nil
	}
	cdPath := q.caps.lookupEnv("CDPATH", r.processEnv)
	if cdPath == "" {
		return nil
	}

	listSep := ":"
	if q.windowsStyle {
		listSep = ";"
	}

	var completions []RawCompletion
	for _, entry := range lo.Compact(strings.Split(cdPath, listSep)) {
		stat, err := r.fs.Resolve(ctx, uri.File(entry), ResolveOptions{ResolveSingleChildDescendants: true})
		if err != nil {
			r.logger.Debug("skipping CDPATH entry", zap.String("entry", entry), zap.Error(err))
			continue
		}
		for _, child := range stat.Children {
			if !child.IsDirectory {
				continue
			}
			friendly := q.friendlyPath(child.Resource, KindFolder)
			if mode == CDPathRelative {
				completions = append(completions, q.item(child.Name, KindFolder, "CDPATH "+friendly))
			} else {
				completions = append(completions, q.item(friendly, KindFolder, "CDPATH"))
			}
		}
	}
	return completions
}

func (q *resolveRequest) classify() pathType {
	folder := q.lastWordFolder
	if strings.HasPrefix(folder, "~"+q.sep) || strings.HasPrefix(folder, "~/") {
		return pathTilde
	}
	switch {
	case q.rules.unixPathsOnWindows:
		if strings.HasPrefix(folder, q.sep) {
			return pathAbsolute
		}
	case q.windowsStyle:
		if windowsDrivePath.MatchString(folder) {
			return pathAbsolute
		}
	default:
		if strings.HasPrefix(folder, q.sep) {
			return pathAbsolute
		}
	}
	return pathRelative
}

func (r *ResourceResolver) homeDir(q *resolveRequest) string {
	if q.windowsStyle {
		return q.caps.lookupEnv("USERPROFILE", r.processEnv)
	}
	return q.caps.lookupEnv("HOME", r.processEnv)
}

func (q *resolveRequest) homePlaceholder() string {
	if q.windowsStyle {
		return homePlaceholderWindows
	}
	return homePlaceholderPosix
}

// friendlyPath renders a resource the way the user's shell would show it.
func (q *resolveRequest) friendlyPath(resource uri.URI, kind Kind) string {
	path := resource.Filename()
	if q.windowsStyle {
		path = strings.ReplaceAll(path, "/", q.sep)
	}
	if kind == KindFolder && !strings.HasSuffix(path, q.sep) {
		path += q.sep
	}
	if q.windowsStyle && windowsDrivePath.MatchString(path) {
		path = strings.ToUpper(path[:1]) + path[1:]
	}
	if q.rules.unixPathsOnWindows {
		path = windowsToGitBashPath(path)
	}
	return path
}

// lastWordOf returns the text after the last unescaped space. It is empty
// when the prefix ends with a space.
func lastWordOf(prefix string) string {
	if strings.HasSuffix(prefix, " ") {
		return ""
	}
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] == ' ' && (i == 0 || prefix[i-1] != '\\') {
			return prefix[i+1:]
		}
	}
	return prefix
}

// folderOf returns the part of word up to and including its last path
// separator. With backslash separators a backslash escaping a space is not a
// separator.
func folderOf(word, sep string, windowsStyle bool) string {
	idx := -1
	if windowsStyle {
		for i := len(word) - 1; i >= 0; i-- {
			if word[i] == '\\' && (i == len(word)-1 || word[i+1] != ' ') {
				idx = i
				break
			}
		}
		idx = max(idx, strings.LastIndex(word, "/"))
	} else {
		idx = strings.LastIndex(word, sep)
	}
	if idx == -1 {
		return ""
	}
	return word[:idx+1]
}

func unescapeSpaces(path string) string {
	return strings.ReplaceAll(path, `\ `, " ")
}

func extensionAllowed(name string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return true
	}
	ext := name[idx+1:]
	return lo.ContainsBy(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimPrefix(a, "."), ext)
	})
}

// gitBashToWindowsPath converts /c/foo and /foo style paths to native
// Windows paths, using systemDrive for paths without a drive.
func gitBashToWindowsPath(path, systemDrive string) string {
	if systemDrive == "" {
		systemDrive = "C:"
	}
	systemDrive = strings.ToUpper(systemDrive)
	if m := gitBashDrivePath.FindStringSubmatch(path); m != nil {
		rest := `\`
		if m[2] != "" {
			rest = strings.ReplaceAll(m[2], "/", `\`)
		}
		return strings.ToUpper(m[1]) + ":" + rest
	}
	if strings.HasPrefix(path, "/") {
		return systemDrive + strings.ReplaceAll(path, "/", `\`)
	}
	return strings.ReplaceAll(path, "/", `\`)
}

// windowsToGitBashPath converts C:\foo\bar to /c/foo/bar.
func windowsToGitBashPath(path string) string {
	if windowsDrivePath.MatchString(path) {
		return "/" + strings.ToLower(path[:1]) + "/" + strings.ReplaceAll(path[3:], `\`, "/")
	}
	return strings.ReplaceAll(path, `\`, "/")
}
