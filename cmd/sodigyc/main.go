// Command sodigyc is the compiler driver: it parses command-line
// subcommands and flags and wires internal/config, internal/orchestrator,
// internal/cache, and internal/diag together into a runnable compiler.
// Grounded on cmd/ailang/main.go's flag-subcommand-dispatch shape and
// fatih/color status-line style.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"

	"github.com/sodigy-lang/sodigy/internal/cache"
	"github.com/sodigy-lang/sodigy/internal/config"
	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/orchestrator"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printHelp()
		return 1
	}

	switch args[0] {
	case "build":
		return cmdBuild(args[1:])
	case "run":
		return cmdRun(args[1:])
	case "test":
		return cmdTest(args[1:])
	case "new":
		return cmdNew(args[1:])
	case "clean":
		return cmdClean(args[1:])
	case "interpret":
		return cmdInterpret(args[1:])
	case "help", "-h", "--help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), args[0])
		printHelp()
		return 1
	}
}

func printHelp() {
	fmt.Println(bold("sodigyc - the Sodigy compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sodigyc <command> [flags] <file>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>       Compile a module to the configured backend\n", cyan("build"))
	fmt.Printf("  %s <file>       Build and immediately run a module\n", cyan("run"))
	fmt.Printf("  %s <file>       Build with --test and report results\n", cyan("test"))
	fmt.Printf("  %s <dir>        Scaffold a new project directory\n", cyan("new"))
	fmt.Printf("  %s <dir>        Remove a project's intermediate directory\n", cyan("clean"))
	fmt.Printf("  %s              Start the interactive REPL\n", cyan("interpret"))
	fmt.Printf("  %s              Show this help message\n", cyan("help"))
	fmt.Println()
	fmt.Println("Flags (build/run/test):")
	fmt.Println("  --output <path>        Output artifact path")
	fmt.Println("  --backend <name>       c | rust | python | bytecode (default bytecode)")
	fmt.Println("  --jobs <n>             Worker goroutines (default: number of CPUs)")
	fmt.Println("  --release, -O          Optimized build")
	fmt.Println("  --no-std               Exclude the standard library prelude")
	fmt.Println("  --emit-irs             Keep per-stage IR dumps in the intermediate dir")
	fmt.Println("  --test                 Build the test harness instead of the main entrypoint")
}

// buildOptions mirrors spec §6's common build flags.
type buildOptions struct {
	output  string
	backend string
	jobs    int
	release bool
	noStd   bool
	emitIRs bool
	test    bool
}

func registerBuildFlags(fs *flag.FlagSet, o *buildOptions) {
	fs.StringVar(&o.output, "output", "", "output artifact path")
	fs.StringVar(&o.backend, "backend", "bytecode", "backend: c|rust|python|bytecode")
	fs.IntVar(&o.jobs, "jobs", runtime.NumCPU(), "number of worker goroutines")
	fs.BoolVar(&o.release, "release", false, "optimized build")
	fs.BoolVar(&o.release, "O", false, "alias for --release")
	fs.BoolVar(&o.noStd, "no-std", false, "exclude the standard library prelude")
	fs.BoolVar(&o.emitIRs, "emit-irs", false, "keep per-stage IR dumps in the intermediate dir")
	fs.BoolVar(&o.test, "test", false, "build the test harness instead of the main entrypoint")
}

func cmdBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var o buildOptions
	registerBuildFlags(fs, &o)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: build requires a root module file\n", red("Error"))
		return 1
	}
	ok, _ := compileProject(fs.Arg(0), o)
	if !ok {
		return 1
	}
	return 0
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var o buildOptions
	registerBuildFlags(fs, &o)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: run requires a root module file\n", red("Error"))
		return 1
	}
	ok, outputPath := compileProject(fs.Arg(0), o)
	if !ok {
		return 1
	}
	// CodeGen is a bytecode-dump stub (spec §12's Non-goal): "running" a
	// program means printing what the stub recorded rather than executing a
	// real backend's output.
	data, err := os.ReadFile(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: reading build output: %v\n", red("Error"), err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func cmdTest(args []string) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var o buildOptions
	registerBuildFlags(fs, &o)
	o.test = true
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: test requires a root module file\n", red("Error"))
		return 1
	}
	ok, _ := compileProject(fs.Arg(0), o)
	if !ok {
		return 1
	}
	fmt.Printf("%s test build succeeded\n", green("✓"))
	return 0
}

// compileProject drives a single module (and its configured dependencies)
// through the orchestrator's scheduler, printing diagnostics and returning
// whether the build succeeded along with the codegen artifact's path.
func compileProject(inputPath string, o buildOptions) (bool, string) {
	projectDir := filepath.Dir(inputPath)
	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return false, ""
	}

	intermediateDir := filepath.Join(projectDir, ".sodigy-cache")
	jobs := o.jobs
	if jobs < 1 {
		jobs = 1
	}

	exec := orchestrator.NewCompileExecutor()
	channels := orchestrator.InitWorkersAndChannels(jobs, exec)
	sched := orchestrator.NewScheduler(channels)
	defer sched.Shutdown()

	modulePath := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	roots := map[string]string{modulePath: inputPath}
	for name, path := range cfg.Dependencies {
		roots[name] = path
	}

	outputPath := o.output
	if outputPath == "" {
		outputPath = filepath.Join(intermediateDir, cache.Key{Stage: cache.StageCodeGen}.Path())
	}

	ok := sched.RunProject(roots, intermediateDir, o.backend, outputPath)
	renderDiagnostics(sched.Bag())
	if ok {
		fmt.Printf("%s compiled %s\n", green("✓"), inputPath)
	}
	return ok, outputPath
}

func cmdNew(args []string) int {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: new requires a project directory\n", red("Error"))
		return 1
	}
	dir := fs.Arg(0)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}
	cfg := config.New()
	if err := cfg.Save(filepath.Join(dir, "sodigy.json")); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}
	mainPath := filepath.Join(dir, "main.sdg")
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		if err := os.WriteFile(mainPath, []byte("fn main() = 0;\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
	}
	fmt.Printf("%s created project %s\n", green("✓"), dir)
	return 0
}

func cmdClean(args []string) int {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	dir := "."
	if fs.NArg() >= 1 {
		dir = fs.Arg(0)
	}
	cacheDir := filepath.Join(dir, ".sodigy-cache")
	if err := os.RemoveAll(cacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}
	fmt.Printf("%s removed %s\n", green("✓"), cacheDir)
	return 0
}

func renderDiagnostics(bag *diag.Bag) {
	for _, r := range bag.Sorted() {
		fmt.Fprintln(os.Stderr, diag.RenderHuman(r))
	}
}
