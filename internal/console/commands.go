package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// commandTable returns the dispatch table keyed by command name.
func commandTable() map[string]command {
	return map[string]command{
		"quit":    {run: runQuit, help: "Exit the console."},
		"EOF":     {run: runQuit, help: "Exit the console on end of input (Ctrl-D)."},
		"create":  {run: runCreate, help: "Usage: create <class>\nCreate a new instance of <class>, save it to the store and print its id."},
		"show":    {run: runShow, help: "Usage: show <class> <id>\nPrint the string representation of an instance."},
		"destroy": {run: runDestroy, help: "Usage: destroy <class> <id>\nDelete an instance and save the change to the store."},
		"all":     {run: runAll, help: "Usage: all [<class>]\nPrint every instance, or every instance of <class>."},
		"count":   {run: runCount, help: "Usage: count <class>\nPrint the number of instances of <class>."},
		"update":  {run: runUpdate, help: "Usage: update <class> <id> <attribute> \"<value>\"\nAdd or replace one attribute of an instance and save the change.\nQuote values that contain spaces."},
		"help":    {run: runHelp, help: "Usage: help [<command>]\nList the available commands, or describe one."},
	}
}

func runQuit(c *Console, args []string) error {
	return ErrQuit
}

// checkClass validates the leading class argument.
func checkClass(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", ErrClassMissing
	}
	if !types.IsClass(args[0]) {
		return "", ErrClassUnknown
	}
	return args[0], nil
}

// lookup validates "<class> <id>" arguments and returns the stored record.
func (c *Console) lookup(args []string) (*types.Record, error) {
	class, err := checkClass(args)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 || args[1] == "" {
		return nil, ErrIDMissing
	}
	r, err := c.store.Get(class, args[1])
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrNoInstance
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", types.RecordKey(class, args[1]), err)
	}
	return r, nil
}

func runCreate(c *Console, args []string) error {
	class, err := checkClass(args)
	if err != nil {
		return err
	}
	r, err := types.NewRecord(class)
	if err != nil {
		return fmt.Errorf("new record: %w", err)
	}
	if err := c.store.New(r); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	c.println(r.ID)
	return nil
}

func runShow(c *Console, args []string) error {
	r, err := c.lookup(args)
	if err != nil {
		return err
	}
	if c.JSON {
		return c.printJSON(r.ToMap())
	}
	c.println(r.String())
	return nil
}

func runDestroy(c *Console, args []string) error {
	r, err := c.lookup(args)
	if err != nil {
		return err
	}
	if err := c.store.Delete(r.Class, r.ID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func runAll(c *Console, args []string) error {
	var records []*types.Record
	if len(args) == 0 {
		records = c.store.All()
	} else {
		class, err := checkClass(args)
		if err != nil {
			return err
		}
		records = c.store.ByClass(class)
	}

	if c.JSON {
		docs := make([]map[string]any, 0, len(records))
		for _, r := range records {
			docs = append(docs, r.ToMap())
		}
		return c.printJSON(docs)
	}
	for _, r := range records {
		c.println(r.String())
	}
	return nil
}

func runCount(c *Console, args []string) error {
	class, err := checkClass(args)
	if err != nil {
		return err
	}
	c.println(strconv.Itoa(len(c.store.ByClass(class))))
	return nil
}

func runUpdate(c *Console, args []string) error {
	r, err := c.lookup(args)
	if err != nil {
		return err
	}
	if len(args) < 3 || args[2] == "" {
		return ErrAttrMissing
	}
	if len(args) < 4 {
		return ErrValueMissing
	}
	return c.applyUpdate(r, map[string]any{args[2]: args[3]})
}

// applyUpdate sets each attribute and saves the record once. Reserved
// attribute names are skipped; composite values are stored as their JSON text.
// Every name is checked before r is touched, so a rejected update changes nothing.
func (c *Console) applyUpdate(r *types.Record, attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name == "" {
			return ErrAttrMissing
		}
		if types.IsReserved(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.Set(name, scalar(attrs[name])); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	if err := c.store.Update(r); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// scalar returns v unchanged for strings, numbers, booleans and nil, and the
// JSON encoding of anything else.
func scalar(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func (c *Console) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	c.println(string(out))
	return nil
}
