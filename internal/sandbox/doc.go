/*
Package sandbox hosts page scripts in a goja runtime and exposes the bridge
API to them.

# Page globals

Every run binds:

  - window/self, location (href, replace, assign), alert
  - document with body, querySelector and getElementById
  - console, setTimeout/clearTimeout
  - gbMailto, gbTel, gbSms, gbMaps, gbOpenApp, gbGoToSection,
    gbNavigatePush, gbNavigateModal, gbNavigateBack, gbRequest,
    gbAuthenticate, gbShare, gbGetMedia, gbGetLocation,
    gbSetPreference, gbGetPreference

The gb* functions go through a bridge.Dispatcher whose Navigator records
each navigation, form submission and alert into the Result.

# Callbacks

Host callbacks (gbRequestDidSuccess, gbRequestDidFail,
gbDidSuccessGetLocation, gbDidFailGetLocation, gbDidSuccessGetPreference)
are functions the page defines itself. They are called on the run's own
loop: after the script body returns, Execute keeps running desktop
completions, Host replies and timers until nothing is pending or
Config.Timeout expires. A callback the page did not define is recorded with
Defined=false and skipped.

# Usage

	rt, err := sandbox.New(sandbox.Config{
		Timeout: 5 * time.Second,
		Bridge:  bridge.Config{DesktopMode: true},
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Execute(ctx, script, nil)
	for _, d := range result.Dispatches {
		log.Info("dispatch", zap.String("kind", d.Kind), zap.String("url", d.URL))
	}
*/
package sandbox
