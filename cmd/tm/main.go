package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CaptainBerkay35/taskmanager/internal/api"
	"github.com/CaptainBerkay35/taskmanager/internal/config"
	"github.com/CaptainBerkay35/taskmanager/internal/db"
	"github.com/CaptainBerkay35/taskmanager/internal/domain"
	"github.com/CaptainBerkay35/taskmanager/internal/engine"
	"github.com/CaptainBerkay35/taskmanager/internal/markup"
	"github.com/CaptainBerkay35/taskmanager/internal/migrate"
	"github.com/CaptainBerkay35/taskmanager/internal/server"
	"github.com/CaptainBerkay35/taskmanager/internal/session"
	"github.com/CaptainBerkay35/taskmanager/internal/view"
)

const dateLayout = "2006-01-02"

var rootCmd = &cobra.Command{
	Use:   "tm",
	Short: "Task manager CLI",
	Long: `tm manages tasks, projects and categories against a task manager API.
Run 'tm serve' to host the API locally, 'tm register' / 'tm login' to open a
session, then 'tm task', 'tm project', 'tm category', 'tm subtask',
'tm dashboard' and 'tm calendar' to work with your data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", userMessage(err))
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(subtaskCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(serveCmd())
}

// --- auth ---

func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openSession()
			if err != nil {
				return err
			}
			if password == "" {
				password = promptLine("password: ")
			}
			res := store.Login(cmd.Context(), username, password)
			if !res.OK {
				return errors.New(res.Message)
			}
			fmt.Printf("logged in as %s\n", store.User().Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func registerCmd() *cobra.Command {
	var username, email, fullName, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openSession()
			if err != nil {
				return err
			}
			if password == "" {
				password = promptLine("password: ")
			}
			res := store.Register(cmd.Context(), username, email, password, fullName)
			if !res.OK {
				return errors.New(res.Message)
			}
			fmt.Printf("registered and logged in as %s\n", store.User().Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openSession()
			if err != nil {
				return err
			}
			if err := store.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openSession()
			if err != nil {
				return err
			}
			if !store.Authenticated() {
				fmt.Println("not logged in")
				return nil
			}
			return printJSONOrTable(store.User())
		},
	}
}

// --- tasks ---

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskCreateCmd())
	cmd.AddCommand(taskUpdateCmd())
	cmd.AddCommand(taskDoneCmd())
	cmd.AddCommand(taskDeleteCmd())
	return cmd
}

func taskListCmd() *cobra.Command {
	var search, status, priority, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				st, err := parseStatusFlag(status)
				if err != nil {
					return err
				}
				pr, err := parsePriorityFlag(priority)
				if err != nil {
					return err
				}
				tasks, err := c.ListTasks(ctx)
				if err != nil {
					return err
				}
				crit := view.TaskCriteria{Search: search, Status: st, Priority: pr, CategoryID: category}
				var tv view.TaskView
				tasks = tv.Filter(tasks, crit)
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due", "Project"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Priority, fmtDatePtr(t.DueDate), t.ProjectID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "substring over title and description")
	cmd.Flags().StringVar(&status, "status", "all", "pending | in-progress | completed | all")
	cmd.Flags().StringVar(&priority, "priority", "all", "low | medium | high | urgent | all")
	cmd.Flags().StringVar(&category, "category", "", "category id filter")
	return cmd
}

func taskShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show a task with its sub-tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				t, err := c.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				subs, err := c.SubTasksByTask(ctx, t.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"task": t, "subTasks": subs})
				}
				fmt.Printf("%s  [%s, %s]\n", t.Title, t.Status, t.Priority)
				if t.DueDate != nil {
					fmt.Printf("due: %s\n", fmtDatePtr(t.DueDate))
				}
				if t.CompletedDate != nil {
					fmt.Printf("completed: %s\n", fmtDatePtr(t.CompletedDate))
				}
				if t.Description != "" {
					fmt.Println()
					fmt.Println(markup.Render(t.Description))
				}
				if len(subs) > 0 {
					fmt.Println()
					tw := table.NewWriter()
					tw.SetOutputMirror(os.Stdout)
					tw.AppendHeader(table.Row{"ID", "Sub-task", "Priority", "Due", "Done"})
					for _, st := range subs {
						tw.AppendRow(table.Row{st.ID, st.Title, st.Priority, fmtDatePtr(st.DueDate), st.IsCompleted})
					}
					tw.Render()
				}
				return nil
			})
		},
	}
	return cmd
}

func taskCreateCmd() *cobra.Command {
	var title, description, status, priority, due, project, category string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				t := domain.Task{Title: title, Description: description, ProjectID: project, CategoryID: category}
				st, err := parseStatusValue(status)
				if err != nil {
					return err
				}
				t.Status = st
				pr, err := parsePriorityValue(priority)
				if err != nil {
					return err
				}
				t.Priority = pr
				if due != "" {
					d, err := parseDate(due)
					if err != nil {
						return err
					}
					t.DueDate = &d
				}
				created, err := c.CreateTask(ctx, t)
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "description (markup supported)")
	cmd.Flags().StringVar(&status, "status", "pending", "pending | in-progress | completed")
	cmd.Flags().StringVar(&priority, "priority", "medium", "low | medium | high | urgent")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, status, priority, due, project, category string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task (full replace; unset flags keep current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				t, err := c.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") {
					t.Title = title
				}
				if cmd.Flags().Changed("description") {
					t.Description = description
				}
				if cmd.Flags().Changed("status") {
					st, err := parseStatusValue(status)
					if err != nil {
						return err
					}
					t.Status = st
				}
				if cmd.Flags().Changed("priority") {
					pr, err := parsePriorityValue(priority)
					if err != nil {
						return err
					}
					t.Priority = pr
				}
				if cmd.Flags().Changed("due") {
					if due == "" {
						t.DueDate = nil
					} else {
						d, err := parseDate(due)
						if err != nil {
							return err
						}
						t.DueDate = &d
					}
				}
				if cmd.Flags().Changed("project") {
					t.ProjectID = project
				}
				if cmd.Flags().Changed("category") {
					t.CategoryID = category
				}
				updated, err := c.UpdateTask(ctx, t)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "pending | in-progress | completed")
	cmd.Flags().StringVar(&priority, "priority", "", "low | medium | high | urgent")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&project, "project", "", "project id (empty detaches)")
	cmd.Flags().StringVar(&category, "category", "", "category id (empty detaches)")
	return cmd
}

func taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				t, err := c.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				t.Status = domain.StatusCompleted
				updated, err := c.UpdateTask(ctx, t)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				if err := c.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("task deleted")
				return nil
			})
		},
	}
}

// --- subtasks ---

func subtaskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "subtask", Short: "Manage sub-tasks"}
	cmd.AddCommand(subtaskListCmd())
	cmd.AddCommand(subtaskAddCmd())
	cmd.AddCommand(subtaskUpdateCmd())
	cmd.AddCommand(subtaskDeleteCmd())
	return cmd
}

func subtaskListCmd() *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sub-tasks of a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				subs, err := c.SubTasksByTask(ctx, taskID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(subs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Priority", "Due", "Done"})
				for _, st := range subs {
					tw.AppendRow(table.Row{st.ID, st.Title, st.Priority, fmtDatePtr(st.DueDate), st.IsCompleted})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "parent task id")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func subtaskAddCmd() *cobra.Command {
	var taskID, title, priority, due string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a sub-task to a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				st := domain.SubTask{TaskID: taskID, Title: title}
				pr, err := parsePriorityValue(priority)
				if err != nil {
					return err
				}
				st.Priority = pr
				if due != "" {
					d, err := parseDate(due)
					if err != nil {
						return err
					}
					st.DueDate = &d
				}
				// warn before the server rejects an out-of-bound due date
				if st.DueDate != nil {
					parent, err := c.GetTask(ctx, taskID)
					if err != nil {
						return err
					}
					if parent.DueDate != nil && st.DueDate.After(*parent.DueDate) {
						return fmt.Errorf("sub-task due date %s is after the parent task's due date %s",
							fmtDatePtr(st.DueDate), fmtDatePtr(parent.DueDate))
					}
				}
				created, err := c.CreateSubTask(ctx, st)
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "parent task id")
	cmd.Flags().StringVar(&title, "title", "", "sub-task title")
	cmd.Flags().StringVar(&priority, "priority", "medium", "low | medium | high | urgent")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func subtaskUpdateCmd() *cobra.Command {
	var taskID, title, priority, due string
	var done bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sub-task (full replace; unset flags keep current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				subs, err := c.SubTasksByTask(ctx, taskID)
				if err != nil {
					return err
				}
				var st *domain.SubTask
				for i := range subs {
					if subs[i].ID == args[0] {
						st = &subs[i]
						break
					}
				}
				if st == nil {
					return fmt.Errorf("sub-task %s not found under task %s", args[0], taskID)
				}
				if cmd.Flags().Changed("title") {
					st.Title = title
				}
				if cmd.Flags().Changed("priority") {
					pr, err := parsePriorityValue(priority)
					if err != nil {
						return err
					}
					st.Priority = pr
				}
				if cmd.Flags().Changed("due") {
					if due == "" {
						st.DueDate = nil
					} else {
						d, err := parseDate(due)
						if err != nil {
							return err
						}
						st.DueDate = &d
					}
				}
				if cmd.Flags().Changed("done") {
					st.IsCompleted = done
				}
				updated, err := c.UpdateSubTask(ctx, *st)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "parent task id")
	cmd.Flags().StringVar(&title, "title", "", "sub-task title")
	cmd.Flags().StringVar(&priority, "priority", "", "low | medium | high | urgent")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().BoolVar(&done, "done", false, "completed flag")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func subtaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sub-task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				if err := c.DeleteSubTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("sub-task deleted")
				return nil
			})
		},
	}
}

// --- projects ---

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}
	cmd.AddCommand(projectListCmd())
	cmd.AddCommand(projectShowCmd())
	cmd.AddCommand(projectCreateCmd())
	cmd.AddCommand(projectUpdateCmd())
	cmd.AddCommand(projectDeleteCmd())
	return cmd
}

func projectListCmd() *cobra.Command {
	var search, category, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				sort, err := view.ParseProjectSort(sortKey)
				if err != nil {
					return err
				}
				projects, err := c.ListProjects(ctx)
				if err != nil {
					return err
				}
				crit := view.ProjectCriteria{Search: search, CategoryID: category, Sort: sort}
				var pv view.ProjectView
				projects = pv.FilterSort(projects, crit)
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Deadline", "Tasks", "Done"})
				for _, p := range projects {
					done := 0
					for _, t := range p.Tasks {
						if t.Status == domain.StatusCompleted {
							done++
						}
					}
					tw.AppendRow(table.Row{p.ID, p.Name, fmtDatePtr(p.Deadline), len(p.Tasks), done})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "substring over name and description")
	cmd.Flags().StringVar(&category, "category", "", "category id filter")
	cmd.Flags().StringVar(&sortKey, "sort", "", "createdDate | createdDateOld | deadline | deadlineFar | name | nameDesc | taskCount | taskCountLow")
	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				p, err := c.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("%s  (%s)\n", p.Name, p.Color)
				if p.Deadline != nil {
					fmt.Printf("deadline: %s\n", fmtDatePtr(p.Deadline))
				}
				if p.Description != "" {
					fmt.Println()
					fmt.Println(markup.Render(p.Description))
				}
				if len(p.Tasks) > 0 {
					fmt.Println()
					tw := table.NewWriter()
					tw.SetOutputMirror(os.Stdout)
					tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due"})
					for _, t := range p.Tasks {
						tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Priority, fmtDatePtr(t.DueDate)})
					}
					tw.Render()
				}
				return nil
			})
		},
	}
}

func projectCreateCmd() *cobra.Command {
	var name, description, color, deadline string
	var categories []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				p := domain.Project{Name: name, Description: description, Color: color, CategoryIDs: categories}
				if deadline != "" {
					d, err := parseDate(deadline)
					if err != nil {
						return err
					}
					p.Deadline = &d
				}
				created, err := c.CreateProject(ctx, p)
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "description (markup supported)")
	cmd.Flags().StringVar(&color, "color", "#3b82f6", "hex color (#RRGGBB)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "category id (repeatable, at least one)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func projectUpdateCmd() *cobra.Command {
	var name, description, color, deadline string
	var categories []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project (full replace; unset flags keep current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				p, err := c.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					p.Name = name
				}
				if cmd.Flags().Changed("description") {
					p.Description = description
				}
				if cmd.Flags().Changed("color") {
					p.Color = color
				}
				if cmd.Flags().Changed("deadline") {
					if deadline == "" {
						p.Deadline = nil
					} else {
						d, err := parseDate(deadline)
						if err != nil {
							return err
						}
						p.Deadline = &d
					}
				}
				if cmd.Flags().Changed("category") {
					p.CategoryIDs = categories
				}
				updated, err := c.UpdateProject(ctx, p)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&color, "color", "", "hex color (#RRGGBB)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "category id (repeatable)")
	return cmd
}

func projectDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and all its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				p, err := c.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				if !yes {
					fmt.Printf("deleting %q removes the project and its %d task(s).\n", p.Name, len(p.Tasks))
					if !confirm("continue? [y/N] ") {
						fmt.Println("aborted")
						return nil
					}
				}
				res, err := c.DeleteProject(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("deleted project %q and %d task(s)\n", res.ProjectName, res.DeletedTasksCount)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// --- categories ---

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "category", Short: "Manage categories"}
	cmd.AddCommand(categoryListCmd())
	cmd.AddCommand(categoryCreateCmd())
	cmd.AddCommand(categoryUpdateCmd())
	cmd.AddCommand(categoryDeleteCmd())
	return cmd
}

func categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				cats, err := c.ListCategories(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cats)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Color"})
				for _, cat := range cats {
					tw.AppendRow(table.Row{cat.ID, cat.Name, cat.Color})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func categoryCreateCmd() *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				created, err := c.CreateCategory(ctx, domain.Category{Name: name, Color: color})
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&color, "color", "#3b82f6", "hex color (#RRGGBB)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func categoryUpdateCmd() *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				cat, err := c.GetCategory(ctx, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					cat.Name = name
				}
				if cmd.Flags().Changed("color") {
					cat.Color = color
				}
				updated, err := c.UpdateCategory(ctx, cat)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&color, "color", "", "hex color (#RRGGBB)")
	return cmd
}

func categoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category (fails while tasks or projects reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				if err := c.DeleteCategory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("category deleted")
				return nil
			})
		},
	}
}

// --- dashboard / calendar ---

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the aggregate dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				tasks, err := c.ListTasks(ctx)
				if err != nil {
					return err
				}
				projects, err := c.ListProjects(ctx)
				if err != nil {
					return err
				}
				categories, err := c.ListCategories(ctx)
				if err != nil {
					return err
				}
				s := view.Summarize(tasks, projects, categories, time.Now())
				if viper.GetBool("json") {
					return printJSON(s)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendRow(table.Row{"projects", s.TotalProjects})
				tw.AppendRow(table.Row{"active projects", s.ActiveProjects})
				tw.AppendRow(table.Row{"completed projects", s.CompletedProjects})
				tw.AppendRow(table.Row{"tasks", s.TotalTasks})
				tw.AppendRow(table.Row{"completed tasks", s.CompletedTasks})
				tw.AppendRow(table.Row{"completion rate", fmt.Sprintf("%d%%", s.CompletionRate)})
				tw.Render()

				if len(s.UpcomingDeadlines) > 0 {
					fmt.Println("\nupcoming deadlines (7 days):")
					for _, p := range s.UpcomingDeadlines {
						fmt.Printf("  %s — %s\n", fmtDatePtr(p.Deadline), p.Name)
					}
				}
				if len(s.OverdueProjects) > 0 {
					fmt.Println("\noverdue projects:")
					for _, p := range s.OverdueProjects {
						fmt.Printf("  %s — %s\n", fmtDatePtr(p.Deadline), p.Name)
					}
				}
				if len(s.TopProjects) > 0 {
					fmt.Println("\nbusiest projects:")
					for _, ps := range s.TopProjects {
						fmt.Printf("  %s — %d task(s), %d done\n", ps.Project.Name, ps.TaskCount, ps.CompletedCount)
					}
				}
				if len(s.ProjectsByCategory) > 0 {
					fmt.Println("\nprojects by category:")
					for _, cc := range s.ProjectsByCategory {
						fmt.Printf("  %s — %d project(s)\n", cc.Category.Name, cc.ProjectCount)
					}
				}
				return nil
			})
		},
	}
}

func calendarCmd() *cobra.Command {
	var project, month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show due tasks and project deadlines as calendar events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *api.Client) error {
				tasks, err := c.ListTasks(ctx)
				if err != nil {
					return err
				}
				projects, err := c.ListProjects(ctx)
				if err != nil {
					return err
				}
				var cv view.CalendarView
				events := cv.Events(tasks, projects, project)
				if month != "" {
					m, err := time.Parse("2006-01", month)
					if err != nil {
						return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
					}
					var filtered []view.Event
					for _, ev := range events {
						if ev.Date.Year() == m.Year() && ev.Date.Month() == m.Month() {
							filtered = append(filtered, ev)
						}
					}
					events = filtered
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Date", "Kind", "Title", "Color"})
				for _, ev := range events {
					tw.AppendRow(table.Row{ev.Date.Format(dateLayout), ev.Kind, ev.Title, ev.Style.Background})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "restrict to one project id")
	cmd.Flags().StringVar(&month, "month", "", "restrict to a month (YYYY-MM)")
	return cmd
}

// --- serve ---

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the task manager API locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			secret := cfg.Server.JWTSecret
			if env := os.Getenv("TM_JWT_SECRET"); env != "" {
				secret = env
			}
			if secret == "" {
				return fmt.Errorf("jwt secret required: set server.jwt_secret in %s or TM_JWT_SECRET", config.Path(workspace))
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			e := engine.New(conn)
			handler, err := server.New(server.Config{Engine: e, Auth: server.AuthConfig{JWTSecret: secret}})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("serving task manager API on http://%s/api (db %s)\n", addr, db.Path(workspace))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config server.addr)")
	return cmd
}

// --- helpers ---

// openSession loads config, builds the API client and restores the
// stored session onto it.
func openSession() (*session.Store, *api.Client, error) {
	workspace := viper.GetString("workspace")
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, nil, err
	}
	baseURL := cfg.API.URL
	if override := viper.GetString("api-url"); override != "" {
		baseURL = override
	}
	client := api.New(baseURL)
	store, err := session.Open(workspace, client)
	if err != nil {
		return nil, nil, err
	}
	client.Token = store.Token()
	return store, client, nil
}

// withClient runs fn with an authenticated API client.
func withClient(cmd *cobra.Command, fn func(context.Context, *api.Client) error) error {
	store, client, err := openSession()
	if err != nil {
		return err
	}
	if !store.Authenticated() {
		return errors.New("not logged in: run 'tm login' or 'tm register' first")
	}
	return fn(cmd.Context(), client)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func confirm(prompt string) bool {
	answer := strings.ToLower(promptLine(prompt))
	return answer == "y" || answer == "yes"
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

func fmtDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// parseStatusFlag accepts "all" (or empty) as the wildcard for list
// filters.
func parseStatusFlag(s string) (domain.Status, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return parseStatusValue(s)
}

// parseStatusValue maps CLI status names onto the wire literals; the
// raw literals are accepted too.
func parseStatusValue(s string) (domain.Status, error) {
	switch strings.ToLower(s) {
	case "pending":
		return domain.StatusPending, nil
	case "in-progress", "inprogress":
		return domain.StatusInProgress, nil
	case "completed", "done":
		return domain.StatusCompleted, nil
	}
	if st := domain.Status(s); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q (pending | in-progress | completed)", s)
}

func parsePriorityFlag(s string) (domain.Priority, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return 0, nil
	}
	return parsePriorityValue(s)
}

func parsePriorityValue(s string) (domain.Priority, error) {
	switch strings.ToLower(s) {
	case "low":
		return domain.PriorityLow, nil
	case "medium":
		return domain.PriorityMedium, nil
	case "high":
		return domain.PriorityHigh, nil
	case "urgent":
		return domain.PriorityUrgent, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		p := domain.Priority(n)
		if p.Valid() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q (low | medium | high | urgent)", s)
}

// userMessage prefers the server's error message when the failure came
// over the API.
func userMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
