package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"room-reservation/internal/booking"
	"room-reservation/internal/catalog"
	"room-reservation/internal/storage"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Manage rooms",
	Long:  `Create, list, import and delete the rooms that can be reserved.`,
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rooms with their current availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogger()
		rooms, err := booking.NewService(provider, nil).RefreshRooms(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing rooms: %w", err)
		}

		if len(rooms) == 0 {
			fmt.Println("No rooms found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCAPACITY\tAVAILABLE")
		for _, room := range rooms {
			fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", room.ID, room.Name, room.MaxCapacity, room.Available)
		}
		return w.Flush()
	},
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create [name] [capacity]",
	Short: "Create a new room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" || utf8.RuneCountInString(name) > 100 {
			return fmt.Errorf("room name must be 1 to 100 characters")
		}
		capacity, err := strconv.Atoi(args[1])
		if err != nil || capacity < 1 {
			return fmt.Errorf("invalid capacity %q", args[1])
		}

		room := &storage.Room{Name: name, MaxCapacity: capacity, Available: true}
		if err := provider.CreateRoom(cmd.Context(), room); err != nil {
			return fmt.Errorf("error creating room: %w", err)
		}

		fmt.Printf("Room '%s' created with ID %d.\n", room.Name, room.ID)
		return nil
	},
}

var roomsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a room and its reservations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID: %w", err)
		}

		if err := provider.DeleteRoom(cmd.Context(), id); err != nil {
			return fmt.Errorf("error deleting room: %w", err)
		}

		fmt.Printf("Room with ID %d deleted.\n", id)
		return nil
	},
}

var importDelimiter string

var roomsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import rooms from a CSV file with name and capacity columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var comma rune
		if importDelimiter != "" {
			r, size := utf8.DecodeRuneInString(importDelimiter)
			if size != len(importDelimiter) {
				return fmt.Errorf("delimiter must be a single character")
			}
			comma = r
		}

		result, err := catalog.ImportFile(cmd.Context(), provider, args[0], comma)
		if err != nil {
			return err
		}

		for _, rowErr := range result.Skipped {
			fmt.Fprintf(os.Stderr, "skipped: %v\n", rowErr)
		}
		fmt.Printf("Imported %d rooms, skipped %d rows.\n", len(result.Created), len(result.Skipped))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(roomsListCmd, roomsCreateCmd, roomsDeleteCmd, roomsImportCmd)

	roomsImportCmd.Flags().StringVarP(&importDelimiter, "delimiter", "d", "", "field delimiter (detected when empty)")
}
