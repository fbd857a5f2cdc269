package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"ogma/internal/codegen"
	"ogma/internal/core"
	"ogma/internal/db"
	"ogma/internal/dialect"
	_ "ogma/internal/dialect/mysql"
	"ogma/internal/enumtables"
	"ogma/internal/output"
	"ogma/internal/parser"
	"ogma/internal/parser/toml"
)

const (
	defaultOutputDir   = "./output"
	defaultBasePackage = "com.example.dbutils"
)

// findJava provides the java executable path, searching first in JAVA_HOME,
// then in the PATH.
func findJava() (string, error) {
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		javaPath := filepath.Join(javaHome, "bin", "java")
		if info, err := os.Stat(javaPath); err == nil && !info.IsDir() {
			return javaPath, nil
		}
	}
	return exec.LookPath("java")
}

// runJooq runs the jOOQ generator with the given configuration file and
// classpath.
func runJooq(java, configFile, classpath string) error {
	if java == "" {
		found, err := findJava()
		if err != nil {
			return fmt.Errorf("failed to locate java executable: %w", err)
		}
		java = found
	}
	command := []string{java}
	if classpath != "" {
		command = append(command, "-classpath", classpath)
	}
	command = append(command, "org.jooq.util.GenerationTool", configFile)
	fmt.Println(strings.Join(command, " "))

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// loadModel reads and builds the database model, applies the hidden schema
// override, and runs full validation including stored procedure analysis.
func loadModel(modelFile, schemaOverride string, allowIncludes bool) (*core.Schema, error) {
	s, err := toml.LoadFile(modelFile, toml.LoadOptions{AllowIncludes: allowIncludes})
	if err != nil {
		return nil, err
	}
	if schemaOverride != "" {
		// WARNING: overriding the schema hides problems in invalid models.
		s.Name = schemaOverride
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := parser.NewProcedureAnalyzer().CheckSchema(s); err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ogma",
		Short: "A database access code generator for Java",
	}

	var dbUser string
	var dbPassword string
	var dbHost string
	var dbName string
	var dbPort int

	addDBFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&dbUser, "db-user", "u", "", "The database user to connect to the database (required)")
		cmd.Flags().StringVarP(&dbPassword, "db-password", "p", "", "The database password to connect to the database (required)")
		cmd.Flags().StringVarP(&dbHost, "db-host", "H", "localhost", "The host holding the database")
		cmd.Flags().StringVar(&dbName, "db-name", "", "The name of the database to create or read")
		cmd.Flags().IntVarP(&dbPort, "db-port", "P", 3306, "The database port")
		_ = cmd.MarkFlagRequired("db-user")
		_ = cmd.MarkFlagRequired("db-password")
	}

	dbSettings := func() db.Settings {
		name := dbName
		if name == "" {
			name = db.NewDatabaseName()
		}
		return db.Settings{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			Name:     name,
		}
	}

	var schemaOverride string
	var allowIncludes bool

	addModelFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&schemaOverride, "schema", "", "")
		_ = cmd.Flags().MarkHidden("schema")
		cmd.Flags().BoolVar(&allowIncludes, "allow-includes", false, "Allow include directives in the model file")
	}

	var codeDir string
	var sqlDir string
	var configDir string
	var javaPath string
	var javaPackage string
	var classpath string
	var noJooq bool
	var keepDB bool
	var includeBinary bool

	generateCmd := &cobra.Command{
		Use:   "generate MODEL_FILE",
		Short: "Generate database code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelFile := args[0]
			s, err := loadModel(modelFile, schemaOverride, allowIncludes)
			if err != nil {
				return err
			}

			settings := dbSettings()
			reporter := output.NewReporter(os.Stdout)
			packageSchema := strings.ToLower(s.Name)
			enumPackage := fmt.Sprintf("%s.%s.enums", javaPackage, packageSchema)
			converterPackage := enumPackage + ".converters"
			dbQueryPackage := fmt.Sprintf("%s.%s.db", javaPackage, packageSchema)

			generator := codegen.NewGenerator(codeDir, configDir, enumPackage, converterPackage, modelFile, reporter)
			if err := generator.GenerateEnumJavaCode(s); err != nil {
				return err
			}

			compiler := dialect.GetDialect(dialect.MySQL).Compiler()
			reporter.Section("Database Creation DDL")
			if err := os.MkdirAll(sqlDir, 0o755); err != nil {
				return fmt.Errorf("failed to create SQL directory %q: %w", sqlDir, err)
			}
			ddl, err := compiler.Compile(s)
			if err != nil {
				return err
			}
			ddlName := fmt.Sprintf("full_ddl.%s.%s.sql", packageSchema, dialect.MySQL)
			ddlPath := filepath.Join(sqlDir, ddlName)
			reporter.Action("Generating database schema for %s", dialect.MySQL)
			if err := os.WriteFile(ddlPath, []byte(ddl+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write DDL file: %w", err)
			}
			reporter.Generated(ddlName)
			reporter.Done()

			configFile, err := generator.GenerateJooqConfig(s, settings, dbQueryPackage, includeBinary)
			if err != nil {
				return err
			}

			if noJooq {
				return nil
			}

			// Create a temporary database, run the jOOQ generator on it,
			// then remove it unless asked to keep it.
			ctx := context.Background()
			if err := db.CreateDatabase(ctx, settings, compiler); err != nil {
				return err
			}
			if !keepDB {
				defer func() {
					if dropErr := db.DropDatabase(context.Background(), settings, compiler); dropErr != nil {
						fmt.Fprintf(os.Stderr, "failed to drop temporary database %s: %v\n", settings.Name, dropErr)
					}
				}()
			}

			conn, err := db.Connect(ctx, settings.DSN())
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.CreateSchema(ctx, conn, compiler, s); err != nil {
				return err
			}

			reporter.Action("Running jOOQ generator on temporary database %s", settings.Name)
			if err := runJooq(javaPath, configFile, classpath); err != nil {
				return fmt.Errorf("jOOQ generator failed: %w", err)
			}
			reporter.Done()
			return nil
		},
	}

	generateCmd.Flags().StringVarP(&codeDir, "code-dir", "c", defaultOutputDir, "The directory under which generated code should be")
	generateCmd.Flags().StringVar(&sqlDir, "sql-dir", defaultOutputDir, "The directory under which generated SQL should be")
	generateCmd.Flags().StringVarP(&configDir, "config-dir", "x", defaultOutputDir, "The directory under which generated config should be")
	generateCmd.Flags().StringVar(&javaPath, "java", "", "The path to the java binary that will run jOOQ")
	generateCmd.Flags().StringVar(&javaPackage, "java-package", defaultBasePackage, "The base Java package of generated database code")
	generateCmd.Flags().StringVar(&classpath, "classpath", os.Getenv("CLASSPATH"), "The classpath, where to find jOOQ and the DB connector")
	generateCmd.Flags().BoolVar(&noJooq, "no-jooq", false, "Skip jOOQ code generation")
	generateCmd.Flags().BoolVar(&keepDB, "keep-db", false, "Do not delete the temporary database afterwards")
	generateCmd.Flags().BoolVar(&includeBinary, "include-binary", false, "Force binary column types in the jOOQ configuration")
	addDBFlags(generateCmd)
	addModelFlags(generateCmd)

	var enumTablesVerbose bool

	enumTablesCmd := &cobra.Command{
		Use:   "enum-tables MODEL_FILE",
		Short: "Create tables with enum names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadModel(args[0], schemaOverride, allowIncludes)
			if err != nil {
				return err
			}
			if len(s.Enums) == 0 {
				fmt.Println("No enums found in the given model")
				return nil
			}

			materializer := enumtables.NewMaterializer(enumtables.Options{
				DSN:     dbSettings().DSN(),
				Dialect: dialect.MySQL,
				Out:     os.Stdout,
				Verbose: enumTablesVerbose,
			})
			ctx := context.Background()
			if err := materializer.Connect(ctx); err != nil {
				return err
			}
			defer func() {
				if closeErr := materializer.Close(); closeErr != nil {
					fmt.Fprintf(os.Stderr, "failed to close database connection: %v\n", closeErr)
				}
			}()
			return materializer.Materialize(ctx, s)
		},
	}
	enumTablesCmd.Flags().BoolVarP(&enumTablesVerbose, "verbose", "v", false, "Show more information about what is happening")
	addDBFlags(enumTablesCmd)
	addModelFlags(enumTablesCmd)

	enumUsageCmd := &cobra.Command{
		Use:   "enum-usage MODEL_FILE",
		Short: "Report enum usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadModel(args[0], schemaOverride, allowIncludes)
			if err != nil {
				return err
			}
			codegen.WriteEnumUsage(os.Stdout, s)
			return nil
		},
	}
	addModelFlags(enumUsageCmd)

	getDBNameCmd := &cobra.Command{
		Use:   "get-db-name",
		Short: "Get a unique database name (for temp db)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(db.NewDatabaseName())
			return nil
		},
	}

	createDBCmd := &cobra.Command{
		Use:   "create-db MODEL_FILE",
		Short: "Create the database from the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadModel(args[0], schemaOverride, allowIncludes)
			if err != nil {
				return err
			}

			settings := dbSettings()
			compiler := dialect.GetDialect(dialect.MySQL).Compiler()
			fmt.Printf("Creating database: %s\n", settings.Name)

			ctx := context.Background()
			if err := db.CreateDatabase(ctx, settings, compiler); err != nil {
				return err
			}
			conn, err := db.Connect(ctx, settings.DSN())
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.CreateSchema(ctx, conn, compiler, s)
		},
	}
	addDBFlags(createDBCmd)
	addModelFlags(createDBCmd)

	dropDBCmd := &cobra.Command{
		Use:   "drop-db DATABASE",
		Short: "Drop a given database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := dbSettings()
			settings.Name = args[0]
			fmt.Printf("Dropping database: %s\n", settings.Name)
			compiler := dialect.GetDialect(dialect.MySQL).Compiler()
			return db.DropDatabase(context.Background(), settings, compiler)
		},
	}
	addDBFlags(dropDBCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(enumTablesCmd)
	rootCmd.AddCommand(enumUsageCmd)
	rootCmd.AddCommand(getDBNameCmd)
	rootCmd.AddCommand(createDBCmd)
	rootCmd.AddCommand(dropDBCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
