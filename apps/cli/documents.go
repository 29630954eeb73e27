package main

import (
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
)

func (cli *commandLine) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create a teacher account; the password is prompted next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}

			nu := user.NewUser{Email: args[0], Password: string(pwd)}
			if err = nu.Validate(cli.v); err != nil {
				return err
			}
			usr, err := cli.client.Register(cmd.Context(), nu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "registered %s (#%d), run `gradebook login %s` to sign in\n", usr.Email, usr.ID, usr.Email)
			return nil
		},
	}
}

// Class files

func (cli *commandLine) fileReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file-report CLASS_ID FILE",
		Short: "Ask the assistant for a report on a file about a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			report, err := ctrl.FileReport(cmd.Context(), args[1], f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, report)
			return nil
		},
	}
}

func (cli *commandLine) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import CLASS_ID FILE",
		Short: "Merge students, assignments and grades from a CSV table into a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			res, err := ctrl.ImportFile(cmd.Context(), args[1], f)
			if err != nil {
				return err
			}
			n := res.Imported
			fmt.Fprintf(cli.out, "%d students, %d assignments, %d grades\n", n.Students, n.Assignments, n.Grades)
			return nil
		},
	}
}

// Documents

func (cli *commandLine) docsCmd() *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List your uploaded documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := cli.client.ListDocuments(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
			for _, d := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", d.ID, d.FileName, d.FileType, d.FileSize, d.UploadedAt.Format(time.RFC822))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "number of documents to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of documents")
	return cmd
}

func (cli *commandLine) docCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doc DOCUMENT_ID",
		Short: "Print the text extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "document id")
			if err != nil {
				return err
			}
			doc, err := cli.client.GetDocument(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s (#%d)\n%s\n", doc.FileName, doc.ID, doc.ExtractedText)
			return nil
		},
	}
}

func (cli *commandLine) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a PDF, DOC, DOCX or TXT document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := cli.client.UploadDocument(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%d\t%s\n", doc.ID, doc.FileName)
			return nil
		},
	}
}

func (cli *commandLine) rmDocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-doc DOCUMENT_ID",
		Short: "Delete an uploaded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "document id")
			if err != nil {
				return err
			}
			if err = cli.client.DeleteDocument(cmd.Context(), ids[0]); err != nil {
				return err
			}
			cli.notifier.Success("document deleted")
			return nil
		},
	}
}

func (cli *commandLine) docAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doc-ask DOCUMENT_ID [QUESTION...]",
		Short: "Chat with the assistant about a document; without QUESTION, questions are read line by line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "document id")
			if err != nil {
				return err
			}
			doc, err := cli.client.GetDocument(cmd.Context(), ids[0])
			if err != nil {
				return err
			}

			chat := gradebook.NewChat(cli.client)
			return cli.converse(args[1:], func(q string) (string, error) {
				answer, err := chat.Ask(cmd.Context(), doc.ExtractedText, q)
				if err != nil {
					cli.notifier.Error("failed to get an answer: " + core.UserMessage(err))
				}
				return answer, err
			})
		},
	}
}
