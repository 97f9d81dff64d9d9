// Command labelforge generates annotated training datasets with an LLM and
// manages the downstream pipeline: validation, visualization, splitting,
// training and evaluation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cognicore/labelforge/internal/llm"
	"github.com/cognicore/labelforge/pkg/labelforge"
	"github.com/cognicore/labelforge/pkg/labelforge/config"
	"github.com/cognicore/labelforge/pkg/labelforge/evaluate"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
	"github.com/cognicore/labelforge/pkg/labelforge/prompt"
	"github.com/cognicore/labelforge/pkg/labelforge/split"
	"github.com/cognicore/labelforge/pkg/labelforge/train"
	"github.com/cognicore/labelforge/pkg/labelforge/validate"
	"github.com/cognicore/labelforge/pkg/labelforge/visualize"
)

const usage = `Usage: labelforge <command> [flags]

Commands:
  generate   Generate training data using an LLM
  validate   Validate a dataset and produce a quality report
  visualize  Serve an HTML view of a dataset
  split      Split a dataset into training and dev sets
  train      Train a model on a generated dataset
  evaluate   Evaluate a trained model

Run 'labelforge <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(ctx, os.Args[2:])
	case "validate":
		err = runValidate(ctx, os.Args[2:])
	case "visualize":
		err = runVisualize(ctx, os.Args[2:])
	case "split":
		err = runSplit(os.Args[2:])
	case "train":
		err = runTrain(os.Args[2:])
	case "evaluate":
		err = runEvaluate(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, internalerr.ErrNotImplemented) {
			fmt.Fprintf(os.Stderr, "Not implemented yet: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		llmConfigPath    = fs.String("llm-config-path", "", "Path to the LLM configuration YAML file (required)")
		promptConfigPath = fs.String("prompt-config-path", "", "Path to the prompt configuration YAML file (required)")
		task             = fs.String("task", "", "Annotation task: ner or textcat (required)")
		samples          = fs.Int("n-samples", 10, "Number of samples to generate")
		outputPath       = fs.String("output-path", "data/output.docpack", "Path for the generated dataset artifact")
		continueOnError  = fs.Bool("continue-on-error", false, "Skip malformed responses instead of aborting")
	)
	fs.Parse(args)

	if *llmConfigPath == "" || *promptConfigPath == "" || *task == "" {
		fs.Usage()
		return fmt.Errorf("%w: --llm-config-path, --prompt-config-path and --task are required", internalerr.ErrInvalidInput)
	}

	// Populate the process environment from .env when present, so config
	// files can reference API keys without exporting them.
	godotenv.Load()
	env := config.EnvMap()

	llmCfg, err := config.LoadLLM(*llmConfigPath, env)
	if err != nil {
		return err
	}
	system, user, err := prompt.LoadPair(*promptConfigPath, env)
	if err != nil {
		return err
	}

	gen, err := labelforge.New(labelforge.Options{
		Task:            *task,
		Samples:         *samples,
		Prompt:          labelforge.PromptPair{System: system, User: user},
		Completer:       llm.New(llmCfg),
		OutputPath:      *outputPath,
		ContinueOnError: *continueOnError,
	})
	if err != nil {
		return err
	}

	summary, err := gen.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s complete: %d/%d documents generated (%d skipped)\n",
		summary.RunID, summary.Generated, summary.Requested, summary.Skipped)
	fmt.Printf("Dataset written to %s\n", summary.OutputPath)
	return nil
}

func runValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		dataset   = fs.String("dataset", "", "Path to the dataset artifact to validate (required)")
		outputDir = fs.String("output-folder", "", "Folder for the validation report (required)")
		task      = fs.String("task", "", "Task type (ner or textcat); detected when omitted")
	)
	fs.Parse(args)

	if *dataset == "" || *outputDir == "" {
		fs.Usage()
		return fmt.Errorf("%w: --dataset and --output-folder are required", internalerr.ErrInvalidInput)
	}

	reportPath, err := validate.Run(ctx, validate.Options{
		DatasetPath: *dataset,
		OutputDir:   *outputDir,
		Task:        *task,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", reportPath)
	return nil
}

func runVisualize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ExitOnError)
	var (
		input   = fs.String("input-path", "", "Path to the dataset artifact (required)")
		task    = fs.String("task", "", "Task type (ner or textcat); detected when omitted")
		samples = fs.Int("n-samples", visualize.DefaultSamples, "Number of samples to visualize")
		port    = fs.Int("port", visualize.DefaultPort, "Port to serve the visualization")
	)
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input-path is required", internalerr.ErrInvalidInput)
	}

	err := visualize.Run(ctx, visualize.Options{
		InputPath: *input,
		Task:      *task,
		Samples:   *samples,
		Port:      *port,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	var (
		input     = fs.String("input", "", "Path to the dataset artifact (required)")
		trainPath = fs.String("train", "train.docpack", "Output path for the training set")
		devPath   = fs.String("dev", "dev.docpack", "Output path for the dev set")
		devSize   = fs.Float64("dev-size", split.DefaultDevSize, "Fraction of data for the dev set")
		seed      = fs.Int64("seed", split.DefaultSeed, "Random seed for reproducibility")
	)
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input is required", internalerr.ErrInvalidInput)
	}

	return split.Run(split.Options{
		InputPath: *input,
		TrainPath: *trainPath,
		DevPath:   *devPath,
		DevSize:   *devSize,
		Seed:      *seed,
	})
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var (
		trainData = fs.String("train-data", "", "Path to the training artifact (required)")
		baseModel = fs.String("base-model", train.DefaultBaseModel, "Base model to fine-tune")
		output    = fs.String("output-model", "models/trained_model", "Path to save the trained model")
		nIter     = fs.Int("n-iter", train.DefaultIterations, "Number of training iterations")
		dropout   = fs.Float64("dropout", train.DefaultDropout, "Dropout rate during training")
	)
	fs.Parse(args)

	if *trainData == "" {
		fs.Usage()
		return fmt.Errorf("%w: --train-data is required", internalerr.ErrInvalidInput)
	}

	return train.Run(train.Options{
		TrainPath:  *trainData,
		OutputDir:  *output,
		BaseModel:  *baseModel,
		Iterations: *nIter,
		Dropout:    *dropout,
	})
}

func runEvaluate(args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	var (
		model = fs.String("model", "", "Path to the trained model (required)")
		data  = fs.String("data", "", "Path to the evaluation artifact (required)")
	)
	fs.Parse(args)

	if *model == "" || *data == "" {
		fs.Usage()
		return fmt.Errorf("%w: --model and --data are required", internalerr.ErrInvalidInput)
	}

	return evaluate.Run(evaluate.Options{ModelPath: *model, DatasetPath: *data})
}
