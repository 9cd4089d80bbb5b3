package shell

import (
	"strings"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/filesystem"
)

// Builtin command names
const (
	CmdEcho = "echo"
	CmdLs   = "ls"
	CmdCd   = "cd"
	CmdCat  = "cat"
	CmdPwd  = "pwd"
	CmdFind = "find"
	CmdCp   = "cp"
)

func registerBuiltins(i *Interpreter) {
	i.Register(CmdEcho, echo)
	i.Register(CmdLs, ls)
	i.Register(CmdCd, cd)
	i.Register(CmdCat, cat)
	i.Register(CmdPwd, pwd)
	i.Register(CmdFind, find)
	i.Register(CmdCp, cp)
}

func echo(_ *filesystem.FileSystem, command string, args []string) vshell.CommandResult {
	return vshell.Success(command, strings.Join(args, " "))
}

func ls(fs *filesystem.FileSystem, command string, _ []string) vshell.CommandResult {
	nodes := fs.ListCurrent()
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = filesystem.DisplayName(n)
	}
	return vshell.Success(command, strings.Join(lines, "\n")).WithNodes(nodes)
}

// cd uses the first argument; extras are ignored
func cd(fs *filesystem.FileSystem, command string, args []string) vshell.CommandResult {
	if len(args) == 0 {
		return vshell.Failure(command, filesystem.NewError(filesystem.KindPathRequired, "", ""))
	}
	if err := fs.ChangeDirectory(args[0]); err != nil {
		return vshell.Failure(command, err)
	}
	return vshell.Success(command, "").WithTarget(fs.CurrentDirectory())
}

// cat uses the first argument; extras are ignored
func cat(fs *filesystem.FileSystem, command string, args []string) vshell.CommandResult {
	if len(args) == 0 {
		return vshell.Failure(command, filesystem.NewError(filesystem.KindFilenameRequired, "", ""))
	}
	f, err := fs.ReadFile(args[0])
	if err != nil {
		return vshell.Failure(command, err)
	}
	return vshell.Success(command, f.Content()).WithTarget(f)
}

func pwd(fs *filesystem.FileSystem, command string, _ []string) vshell.CommandResult {
	return vshell.Success(command, fs.CurrentPath())
}

func find(fs *filesystem.FileSystem, command string, args []string) vshell.CommandResult {
	if len(args) != 1 {
		return vshell.Failure(command, filesystem.NewError(filesystem.KindUsage, "", "find <name>"))
	}
	path, ok := fs.FindByName(args[0])
	if !ok {
		return vshell.Failure(command, filesystem.NewError(filesystem.KindNotFound, args[0], ""))
	}
	return vshell.Success(command, path)
}

// cp copies a file from the current directory into the copy destination.
// The result targets the source so observers can tell what was copied.
func cp(fs *filesystem.FileSystem, command string, args []string) vshell.CommandResult {
	if len(args) != 1 {
		return vshell.Failure(command, filesystem.NewError(filesystem.KindUsage, "", "cp <file>"))
	}
	_, source, err := fs.CopyToWellKnown(args[0], filesystem.RoleCopyDestination)
	if err != nil {
		return vshell.Failure(command, err)
	}
	return vshell.Success(command, "").WithTarget(source)
}
