package main

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
)

func (cli *commandLine) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in and print an access token; the password is prompted next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}

			creds := user.Credentials{Username: args[0], Password: string(pwd)}
			if err = creds.Validate(cli.v); err != nil {
				return err
			}
			tok, err := cli.client.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, tok.AccessToken)
			return nil
		},
	}
}

func (cli *commandLine) classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List your classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := cli.client.ListClasses(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, c := range list {
				fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
			}
			return w.Flush()
		},
	}
}

func (cli *commandLine) showCmd() *cobra.Command {
	var (
		sortKey string
		desc    bool
		filter  string
	)
	cmd := &cobra.Command{
		Use:   "show CLASS_ID",
		Short: "Print the gradebook of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			key, err := gradebook.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			cfg := gradebook.SortConfig{Key: key, Direction: gradebook.Ascending}
			if desc {
				cfg.Direction = gradebook.Descending
			}

			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			cli.printGradebook(ctrl, ctrl.Projection(cfg).WithFilter(filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", string(gradebook.SortByName), "sort students by full_name or id")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort in descending order")
	cmd.Flags().StringVar(&filter, "filter", "", "only show students whose name matches")
	return cmd
}

func (cli *commandLine) printGradebook(ctrl *gradebook.Controller, p gradebook.Projection) {
	cache := ctrl.Cache()
	assignments := cache.Assignments()

	cr := cache.ClassRoom()
	fmt.Fprintf(cli.out, "%s (#%d)\n", cr.Name, cr.ID)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	header := []string{"ID", "STUDENT"}
	for _, a := range assignments {
		header = append(header, fmt.Sprintf("%s [%d]", a.Title, a.ID))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for s := range p.All() {
		row := []string{fmt.Sprint(s.ID), s.FullName}
		for _, a := range assignments {
			value := cache.Grade(s.ID, a.ID)
			if value == "" {
				value = "-"
			}
			row = append(row, value)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// Students

func (cli *commandLine) addStudentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-student CLASS_ID FULL_NAME...",
		Short: "Add a student to a class",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			s, err := ctrl.AddStudent(cmd.Context(), gradebook.NewStudent{FullName: strings.Join(args[1:], " ")})
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%d\t%s\n", s.ID, s.FullName)
			return nil
		},
	}
}

func (cli *commandLine) renameStudentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-student CLASS_ID STUDENT_ID FULL_NAME...",
		Short: "Change the name of a student",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id", "student id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			_, err = ctrl.UpdateStudent(cmd.Context(), ids[1], gradebook.UpdateStudent{FullName: strings.Join(args[2:], " ")})
			return err
		},
	}
}

func (cli *commandLine) rmStudentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-student CLASS_ID STUDENT_ID",
		Short: "Remove a student and their grades",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id", "student id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			return ctrl.RemoveStudent(cmd.Context(), ids[1])
		},
	}
}

// Assignments

func (cli *commandLine) addAssignmentCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add-assignment CLASS_ID TITLE...",
		Short: "Add an assignment to a class",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			na := gradebook.NewAssignment{Title: strings.Join(args[1:], " "), Description: description}
			a, err := ctrl.AddAssignment(cmd.Context(), na)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%d\t%s\n", a.ID, a.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "assignment description")
	return cmd
}

func (cli *commandLine) renameAssignmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-assignment CLASS_ID ASSIGNMENT_ID TITLE...",
		Short: "Change the title of an assignment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id", "assignment id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			_, err = ctrl.UpdateAssignment(cmd.Context(), ids[1], gradebook.UpdateAssignment{Title: strings.Join(args[2:], " ")})
			return err
		},
	}
}

func (cli *commandLine) rmAssignmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-assignment CLASS_ID ASSIGNMENT_ID",
		Short: "Remove an assignment and every grade given for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id", "assignment id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			return ctrl.RemoveAssignment(cmd.Context(), ids[1])
		},
	}
}

func (cli *commandLine) gradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grade CLASS_ID STUDENT_ID ASSIGNMENT_ID [VALUE]",
		Short: "Set a grade; without VALUE the grade is cleared",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id", "student id", "assignment id")
			if err != nil {
				return err
			}
			var value string
			if len(args) == 4 {
				value = args[3]
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			_, err = ctrl.SetGrade(cmd.Context(), ids[1], ids[2], value)
			return err
		},
	}
}

// Assistant

func (cli *commandLine) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report CLASS_ID",
		Short: "Ask the assistant for a report on a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}
			report, err := ctrl.GenerateReport(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, report)
			return nil
		},
	}
}

func (cli *commandLine) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask CLASS_ID [QUESTION...]",
		Short: "Chat with the assistant about a class; without QUESTION, questions are read line by line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "class id")
			if err != nil {
				return err
			}
			ctrl, err := cli.controller(cmd, ids[0])
			if err != nil {
				return err
			}

			return cli.converse(args[1:], func(q string) (string, error) {
				return ctrl.Ask(cmd.Context(), q)
			})
		},
	}
}

// converse answers the question in args, or else every non-blank line of the input.
// Failed questions do not end the conversation; ask reports its own failures.
func (cli *commandLine) converse(args []string, ask func(q string) (string, error)) error {
	if len(args) > 0 {
		answer, err := ask(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, answer)
		return nil
	}

	scanner := bufio.NewScanner(cli.in)
	fmt.Fprint(cli.out, "> ")
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			if answer, err := ask(q); err == nil {
				fmt.Fprintln(cli.out, answer)
			}
		}
		fmt.Fprint(cli.out, "> ")
	}
	fmt.Fprintln(cli.out)
	return scanner.Err()
}
