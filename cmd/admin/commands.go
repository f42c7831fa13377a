package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"complaintdesk/backend/internal/analysis"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect()
		if err != nil {
			return err
		}
		if err := storage.Migrate(cmd.Context(), e.db); err != nil {
			return err
		}
		fmt.Println("Schema is up to date.")
		return nil
	},
}

var (
	userEmail     string
	userFirstName string
	userLastName  string
	userRole      string
	userPassword  string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: `Create an account with the given role.

Examples:
  admin create-user --email dean@uni.edu --first Ada --last Lovelace --role college_dean --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := models.Role(userRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", userRole)
		}
		if len(userPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}
		hashed, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}
		e, err := connect()
		if err != nil {
			return err
		}
		u := &models.User{
			FirstName:    userFirstName,
			LastName:     userLastName,
			Email:        userEmail,
			PasswordHash: hashed,
			Role:         role,
		}
		if err := e.store.SaveUser(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Printf("User %d (%s, %s) has been created.\n", u.ID, u.Email, u.Role)
		return nil
	},
}

var (
	linkEmail  string
	linkChatID int64
)

var linkTelegramCmd = &cobra.Command{
	Use:   "link-telegram",
	Short: "Link an account to a Telegram chat for notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect()
		if err != nil {
			return err
		}
		u, err := e.store.GetUserByEmail(cmd.Context(), linkEmail)
		if err != nil {
			return err
		}
		if linkChatID == 0 {
			u.TelegramChatID = nil
		} else {
			u.TelegramChatID = &linkChatID
		}
		if err := e.store.SaveUser(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Printf("User %s linked to chat %d.\n", u.Email, linkChatID)
		return nil
	},
}

var (
	committeeName    string
	committeeMembers string
)

var createCommitteeCmd = &cobra.Command{
	Use:   "create-committee",
	Short: "Create a review committee",
	Long: `Create a review committee from existing user ids.

Examples:
  admin create-committee --name "Academic Appeals" --members 4,7,12`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseMemberIDs(committeeMembers)
		if err != nil {
			return err
		}
		e, err := connect()
		if err != nil {
			return err
		}
		cm, err := e.svc.CreateCommittee(cmd.Context(), systemActor, complaint.CommitteeInput{Name: committeeName, MemberIDs: ids})
		if err != nil {
			return err
		}
		fmt.Printf("Committee %d (%s) has been created with %d members.\n", cm.ID, cm.Name, len(ids))
		return nil
	},
}

// parseMemberIDs parses a comma separated list of user ids.
func parseMemberIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid member id %q", part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one member id is required")
	}
	return ids, nil
}

// DefaultStereotypes are the tags a fresh installation starts with.
var DefaultStereotypes = []complaint.StereotypeInput{
	{Label: "Harassment", Description: "Verbal, physical or online harassment"},
	{Label: "Discrimination", Description: "Unequal treatment based on a protected characteristic"},
	{Label: "Grading Dispute", Description: "Disagreement about an assessment result"},
	{Label: "Facilities", Description: "Buildings, equipment or campus services"},
	{Label: "Administrative Delay", Description: "Requests left unanswered past their deadline"},
}

var seedStereotypesCmd = &cobra.Command{
	Use:   "seed-stereotypes",
	Short: "Create the default stereotype tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect()
		if err != nil {
			return err
		}
		created, err := seedStereotypes(cmd.Context(), e.svc)
		if err != nil {
			return err
		}
		fmt.Printf("%d stereotypes created, %d already present.\n", created, len(DefaultStereotypes)-created)
		return nil
	},
}

func seedStereotypes(ctx context.Context, svc *complaint.Service) (int, error) {
	created := 0
	for _, in := range DefaultStereotypes {
		_, err := svc.CreateStereotype(ctx, systemActor, in)
		if apperr.IsKind(err, apperr.KindConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", in.Label, err)
		}
		created++
	}
	return created, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print complaint statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect()
		if err != nil {
			return err
		}
		st, err := analysis.Compute(cmd.Context(), e.store)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		printStats(st)
		return nil
	},
}

func printStats(st *analysis.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total\t%d\n", st.Total)
	fmt.Fprintf(w, "Resolved\t%d\n", st.Resolved)
	fmt.Fprintf(w, "Average resolution (hours)\t%.2f\n", st.AverageResolutionHours)
	fmt.Fprintln(w, "\t")
	for _, s := range models.AllStatuses {
		fmt.Fprintf(w, "Status %s\t%d\n", s, st.ByStatus[s])
	}
	categories := make([]string, 0, len(st.ByCategory))
	for c := range st.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "Category %s\t%d\n", c, st.ByCategory[c])
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(migrateCmd, createUserCmd, linkTelegramCmd, createCommitteeCmd, seedStereotypesCmd, statsCmd)

	createUserCmd.Flags().StringVar(&userEmail, "email", "", "E-mail address (required)")
	createUserCmd.Flags().StringVar(&userFirstName, "first", "", "First name")
	createUserCmd.Flags().StringVar(&userLastName, "last", "", "Last name")
	createUserCmd.Flags().StringVar(&userRole, "role", string(models.RoleUser), "Role")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Initial password (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	linkTelegramCmd.Flags().StringVar(&linkEmail, "email", "", "E-mail of the account (required)")
	linkTelegramCmd.Flags().Int64Var(&linkChatID, "chat-id", 0, "Telegram chat id, 0 unlinks")
	_ = linkTelegramCmd.MarkFlagRequired("email")

	createCommitteeCmd.Flags().StringVarP(&committeeName, "name", "n", "", "Committee name (required)")
	createCommitteeCmd.Flags().StringVar(&committeeMembers, "members", "", "Comma separated user ids (required)")
	_ = createCommitteeCmd.MarkFlagRequired("name")
	_ = createCommitteeCmd.MarkFlagRequired("members")
}
