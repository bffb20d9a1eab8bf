package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"library-lending/library"
)

func librarianMenu(sc *bufio.Scanner, mgr *library.LibraryManager) {
	fmt.Println("\n--- Librarian Menu ---")
	fmt.Println("  Members: register member, remove member, list members, search member")
	fmt.Println("  Books: add book, remove book, list books, search book")
	fmt.Println("  Circulation: issue, return, transactions")
	fmt.Println("  Session: logout")

	for {
		fmt.Print("\nlibrarian> ")
		if !sc.Scan() {
			return
		}
		switch strings.TrimSpace(sc.Text()) {
		case "register member":
			handleRegisterMember(sc, mgr)
		case "remove member":
			handleRemoveMember(sc, mgr)
		case "list members":
			handleListMembers(mgr)
		case "search member":
			handleSearchMember(sc, mgr)
		case "add book":
			handleAddBook(sc, mgr)
		case "remove book":
			handleRemoveBook(sc, mgr)
		case "list books":
			handleListBooks(mgr)
		case "search book":
			handleSearchBooks(sc, mgr)
		case "issue":
			if email, ok := promptMember(sc, mgr); ok {
				handleBorrow(sc, mgr, email)
			}
		case "return":
			if email, ok := promptMember(sc, mgr); ok {
				handleReturn(sc, mgr, email)
			}
		case "transactions":
			handleTransactions(mgr)
		case "logout":
			fmt.Println("Logging out...")
			return
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

func memberMenu(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	fmt.Println("\n--- Member Menu ---")
	fmt.Println("  Books: borrowed, search book, borrow, return, recommendations")
	fmt.Println("  Reservations: reserve, reservations, cancel reservation")
	fmt.Println("  Account: dues, clear dues, notifications, change password")
	fmt.Println("  Session: logout")

	for {
		fmt.Print("\nmember> ")
		if !sc.Scan() {
			return
		}
		switch strings.TrimSpace(sc.Text()) {
		case "borrowed":
			handleBorrowed(mgr, email)
		case "search book":
			handleSearchBooks(sc, mgr)
		case "borrow":
			handleBorrow(sc, mgr, email)
		case "return":
			handleReturn(sc, mgr, email)
		case "recommendations":
			handleRecommend(sc, mgr, email)
		case "reserve":
			handleReserve(sc, mgr, email)
		case "reservations":
			handleReservations(mgr, email)
		case "cancel reservation":
			handleCancelReservation(sc, mgr, email)
		case "dues":
			handleDues(mgr, email)
		case "clear dues":
			handleClearDues(mgr, email)
		case "notifications":
			handleNotifications(mgr, email)
		case "change password":
			handleChangePassword(sc, mgr, email)
		case "logout":
			fmt.Println("Logging out...")
			return
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

// ------------------ Librarian handlers ------------------

func handleRegisterMember(sc *bufio.Scanner, mgr *library.LibraryManager) {
	name, ok := prompt(sc, "Name: ")
	if !ok {
		return
	}
	age, ok := promptInt(sc, "Age: ")
	if !ok {
		return
	}
	email, ok := prompt(sc, "Email: ")
	if !ok {
		return
	}
	password, err := readPassword(sc, fmt.Sprintf("Enter password for %s: ", name))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	if _, err := mgr.RegisterMember(name, age, email, password); err != nil {
		fmt.Printf("Member not registered: %v\n", err)
		return
	}
	fmt.Printf("Member '%s' registered successfully.\n", name)
}

func handleRemoveMember(sc *bufio.Scanner, mgr *library.LibraryManager) {
	email, ok := prompt(sc, "Member email to remove: ")
	if !ok {
		return
	}
	if _, found := mgr.Member(email); !found {
		fmt.Println("Member not found.")
		return
	}
	if err := mgr.RemoveMember(email); err != nil {
		fmt.Printf("Member not removed: %v\n", err)
		return
	}
	fmt.Printf("Member %s removed.\n", email)
}

func handleListMembers(mgr *library.LibraryManager) {
	members := mgr.Members()
	if len(members) == 0 {
		fmt.Println("No members registered.")
		return
	}
	fmt.Printf("%-25s %-5s %-30s %-9s\n", "Name", "Age", "Email", "Borrowed")
	fmt.Println(strings.Repeat("-", 72))
	for _, m := range members {
		fmt.Printf("%-25s %-5d %-30s %-9d\n", truncateString(m.Name, 25), m.Age, truncateString(m.Email, 30), len(m.Borrowed))
	}
}

func handleSearchMember(sc *bufio.Scanner, mgr *library.LibraryManager) {
	query, ok := prompt(sc, "Query: ")
	if !ok {
		return
	}
	m := mgr.FindMember(query)
	if m == nil {
		fmt.Println("No results found.")
		return
	}
	fmt.Printf(" - %s (Email: %s)\n", m.Name, m.Email)
}

func handleAddBook(sc *bufio.Scanner, mgr *library.LibraryManager) {
	title, ok := prompt(sc, "Title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, "Author: ")
	if !ok {
		return
	}
	isbn, ok := prompt(sc, "ISBN: ")
	if !ok {
		return
	}
	genre, ok := prompt(sc, "Genre: ")
	if !ok {
		return
	}
	description, ok := prompt(sc, "Description (optional): ")
	if !ok {
		return
	}
	copies, ok := promptInt(sc, "Total copies: ")
	if !ok {
		return
	}

	if err := mgr.AddBook(library.NewBook(isbn, title, author, genre, description, copies)); err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added '%s' (ISBN %s).\n", title, isbn)
}

func handleRemoveBook(sc *bufio.Scanner, mgr *library.LibraryManager) {
	isbn, ok := prompt(sc, "ISBN to remove: ")
	if !ok {
		return
	}
	if _, found := mgr.Book(isbn); !found {
		fmt.Println("Book not found.")
		return
	}
	mgr.RemoveBook(isbn)
	fmt.Printf("Book %s removed.\n", isbn)
}

func handleListBooks(mgr *library.LibraryManager) {
	books := mgr.Books()
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	printBooks(books)
}

func handleTransactions(mgr *library.LibraryManager) {
	entries := mgr.Entries()
	if len(entries) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	fmt.Printf("%-25s %-30s %-15s %-12s %-12s %-12s\n", "Member", "Title", "ISBN", "Borrowed", "Returned", "Due")
	fmt.Println(strings.Repeat("-", 110))
	for _, e := range entries {
		member := e.MemberEmail
		if m, ok := mgr.Member(e.MemberEmail); ok {
			member = m.Name
		}
		title := e.ISBN
		if b, ok := mgr.Book(e.ISBN); ok {
			title = b.Title
		}
		returned := "-"
		if e.ReturnDate != nil {
			returned = e.ReturnDate.Format("2006-01-02")
		}
		fmt.Printf("%-25s %-30s %-15s %-12s %-12s %-12s\n",
			truncateString(member, 25),
			truncateString(title, 30),
			e.ISBN,
			e.BorrowDate.Format("2006-01-02"),
			returned,
			e.DueDate.Format("2006-01-02"))
	}
}

// promptMember asks for a member email and checks it exists.
func promptMember(sc *bufio.Scanner, mgr *library.LibraryManager) (string, bool) {
	email, ok := prompt(sc, "Member email: ")
	if !ok {
		return "", false
	}
	if _, found := mgr.Member(email); !found {
		fmt.Println("Invalid member or book.")
		return "", false
	}
	return email, true
}

// ------------------ Shared circulation handlers ------------------

func handleSearchBooks(sc *bufio.Scanner, mgr *library.LibraryManager) {
	query, ok := prompt(sc, "Query: ")
	if !ok {
		return
	}
	books := mgr.FindBooks(query)
	if len(books) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s) matching '%s':\n", len(books), query)
	printBooks(books)
}

func handleBorrow(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	query, ok := prompt(sc, "Book title or ISBN: ")
	if !ok {
		return
	}

	receipt, err := mgr.Borrow(email, query, false)
	if errors.Is(err, library.ErrUnavailable) {
		fmt.Printf("%v\n", err)
		answer, ok := prompt(sc, "Would you like to reserve it? (y/n): ")
		if !ok || !strings.EqualFold(answer, "y") {
			return
		}
		receipt, err = mgr.Borrow(email, query, true)
	}

	var fineErr *library.OutstandingFineError
	switch {
	case errors.As(err, &fineErr):
		fmt.Printf("Cannot borrow. Outstanding fine: %s for '%s'.\n", fineErr.Amount.StringFixed(2), fineErr.BookTitle)
	case err != nil:
		fmt.Printf("Error: %v\n", err)
	case receipt.Reserved:
		fmt.Printf("'%s' reserved. Position in queue: %d\n", receipt.Book.Title, mgr.QueuePosition(receipt.Book.ISBN, email))
	default:
		fmt.Printf("Borrowed '%s'. Due on %s.\n", receipt.Book.Title, receipt.Entry.DueDate.Format("2006-01-02"))
	}
}

func handleReturn(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	query, ok := prompt(sc, "Book title or ISBN: ")
	if !ok {
		return
	}
	receipt, err := mgr.Return(email, query)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if receipt.Fine.IsPositive() {
		fmt.Printf("Returned late! Fine = %s\n", receipt.Fine.StringFixed(2))
	} else {
		fmt.Println("Book returned on time. No fine.")
	}
	if receipt.Notified != "" {
		fmt.Printf("Notification sent to %s for '%s'.\n", receipt.Notified, receipt.Book.Title)
	}
}

// ------------------ Member handlers ------------------

func handleBorrowed(mgr *library.LibraryManager, email string) {
	books, err := mgr.BorrowedBooks(email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("You have not borrowed any books.")
		return
	}
	fmt.Println("Borrowed books:")
	for _, b := range books {
		fmt.Printf(" - %s by %s\n", b.Title, b.Author)
	}
}

func handleRecommend(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	title, ok := prompt(sc, "Title you liked (press Enter for personalized): ")
	if !ok {
		return
	}
	req := library.RecommendRequest{Mode: library.RecommendPersonalized, MemberEmail: email}
	if title != "" {
		req = library.RecommendRequest{Mode: library.RecommendGeneric, QueryTitle: title}
	}

	recs := mgr.Recommend(req)
	if len(recs) == 0 {
		fmt.Println("No recommendations yet.")
		return
	}
	fmt.Println("Recommended books for you:")
	for _, r := range recs {
		fmt.Println(" -", r)
	}
}

func handleReserve(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	query, ok := prompt(sc, "Book title or ISBN to reserve: ")
	if !ok {
		return
	}
	receipt, err := mgr.Reserve(email, query)
	switch {
	case errors.Is(err, library.ErrAvailableNow):
		fmt.Println("This book is available. You can borrow it directly.")
	case errors.Is(err, library.ErrAlreadyReserved):
		fmt.Println("You've already reserved this book.")
	case err != nil:
		fmt.Printf("Error: %v\n", err)
	default:
		fmt.Printf("'%s' reserved. Position in queue: %d\n", receipt.Book.Title, mgr.QueuePosition(receipt.Book.ISBN, email))
	}
}

func handleReservations(mgr *library.LibraryManager, email string) {
	books, err := mgr.Reservations(email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("No reservations.")
		return
	}
	fmt.Printf("%-10s %-30s\n", "Position", "Title")
	fmt.Println(strings.Repeat("-", 42))
	for _, b := range books {
		fmt.Printf("%-10d %-30s\n", mgr.QueuePosition(b.ISBN, email), truncateString(b.Title, 30))
	}
}

func handleCancelReservation(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	query, ok := prompt(sc, "Book title or ISBN: ")
	if !ok {
		return
	}
	book, err := mgr.CancelReservation(email, query)
	if err != nil {
		fmt.Printf("Error cancelling reservation: %v\n", err)
		return
	}
	fmt.Printf("Reservation for '%s' cancelled.\n", book.Title)
}

func handleDues(mgr *library.LibraryManager, email string) {
	dues, err := mgr.PendingDues(email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(dues) == 0 {
		fmt.Println("You have no pending dues.")
		return
	}
	fmt.Println("Pending dues:")
	for _, d := range dues {
		status := ""
		if d.Paid {
			status = " (paid)"
		}
		fmt.Printf("Book: %s, Due Date: %s, Fine: %s%s\n", d.BookTitle, d.DueDate.Format("2006-01-02"), d.Fine.StringFixed(2), status)
	}
}

func handleClearDues(mgr *library.LibraryManager, email string) {
	paid, err := mgr.ClearDues(email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(paid) == 0 {
		fmt.Println("No fines to pay.")
		return
	}
	for _, p := range paid {
		fmt.Printf("Fine of %s paid successfully for '%s'.\n", p.Amount.StringFixed(2), p.BookTitle)
	}
}

func handleNotifications(mgr *library.LibraryManager, email string) {
	notes, err := mgr.Notifications(email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(notes) == 0 {
		fmt.Println("No new notifications.")
		return
	}
	for _, n := range notes {
		fmt.Println(" -", n)
	}
}

// handleChangePassword serves both "forgot password" (email empty, asked
// for) and a signed-in member changing their own password.
func handleChangePassword(sc *bufio.Scanner, mgr *library.LibraryManager, email string) {
	if email == "" {
		var ok bool
		if email, ok = prompt(sc, "Enter your email: "); !ok {
			return
		}
	}
	if _, found := mgr.Member(email); !found {
		fmt.Println("Member not found.")
		return
	}
	password, err := readPassword(sc, "Enter new password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if err := mgr.ChangePassword(email, password); err != nil {
		fmt.Printf("Password not changed: %v\n", err)
		return
	}
	fmt.Println("Password changed successfully.")
}

// ------------------ Formatting ------------------

func printBooks(books []*library.Book) {
	fmt.Printf("%-30s %-25s %-15s %-15s %-10s %s\n", "Title", "Author", "ISBN", "Genre", "Available", "Queue")
	fmt.Println(strings.Repeat("-", 105))
	for _, b := range books {
		fmt.Printf("%-30s %-25s %-15s %-15s %-10s %d\n",
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.ISBN,
			truncateString(b.Genre, 15),
			fmt.Sprintf("%d/%d", b.AvailableCopies, b.TotalCopies),
			len(b.Queue))
	}
}

// truncateString shortens s to maxLength runes, ending in "...".
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
