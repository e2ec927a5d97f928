package email

const subjectCallbackReminderFmt = "Callback reminder: %s"
